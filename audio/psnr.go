package audio

import (
	"math"
)

// CalculatePSNR measures carrier degradation between the original and the
// stego bytes, in dB. Identical buffers yield +Inf.
func CalculatePSNR(original, stego []byte) float64 {
	if len(original) != len(stego) || len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE)), 255 for byte samples
	maxSignalValue := 255.0
	return 20 * math.Log10(maxSignalValue/math.Sqrt(mse))
}

// ValidatePSNR reports whether the quality metric clears a threshold.
func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}
