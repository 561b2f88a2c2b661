// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1,1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	x = clampUnit(x)

	// 32767 keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

// Float32ToByte maps a sample in [-1,1] onto 0..255, with silence at 128.
// Out of range input is clamped.
func Float32ToByte(x float32) byte {
	x = clampUnit(x)

	v := 128.0 * (1.0 + x)
	if v > 255 {
		return 255
	}
	return byte(v)
}

// DecibelsToByte scales db linearly from [minDB,maxDB] onto 0..255.
func DecibelsToByte(db, minDB, maxDB float64) byte {
	if maxDB <= minDB {
		return 0
	}

	scaled := 255.0 * (db - minDB) / (maxDB - minDB)
	switch {
	case scaled != scaled, scaled < 0: // NaN or below floor
		return 0
	case scaled > 255:
		return 255
	}
	return byte(scaled)
}

func clampUnit(x float32) float32 {
	if x > 1 {
		return 1
	} else if x < -1 {
		return -1
	}
	return x
}

// IntSampleScale returns the divisor that maps signed integer PCM of the
// given bit depth onto [-1,1]. Unknown depths fall back to 16-bit.
func IntSampleScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}
