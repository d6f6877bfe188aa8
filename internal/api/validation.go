package api

import (
	"fmt"
	"math"
)

const maxClientSeedLen = 256

// ValidateSpinRequest checks a spin request against an n-segment wheel
func ValidateSpinRequest(req *SpinRequest, n int) error {
	if req.Winner != nil && (*req.Winner < 0 || *req.Winner >= n) {
		return fmt.Errorf("winner must be an index in [0, %d)", n)
	}
	if len(req.ClientSeed) > maxClientSeedLen {
		return fmt.Errorf("client_seed longer than %d bytes", maxClientSeedLen)
	}
	return nil
}

// ValidateVerifyRequest requires exactly one of an angle or a seed pair and
// reports the offending field.
func ValidateVerifyRequest(req *VerifyRequest) (string, error) {
	hasSeeds := req.ServerSeed != "" || req.ClientSeed != ""
	switch {
	case req.Angle != nil && hasSeeds:
		return "angle", fmt.Errorf("give either angle or server_seed/client_seed, not both")
	case req.Angle != nil:
		if err := checkFiniteAngle(*req.Angle); err != nil {
			return "angle", err
		}
		return "", nil
	case !hasSeeds:
		return "angle", fmt.Errorf("angle or server_seed/client_seed is required")
	case req.ServerSeed == "":
		return "server_seed", fmt.Errorf("server seed is required")
	case req.ClientSeed == "":
		return "client_seed", fmt.Errorf("client seed is required")
	}
	return "", nil
}

func checkFiniteAngle(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("angle must be finite")
	}
	return nil
}
