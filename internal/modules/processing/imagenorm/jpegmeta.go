package imagenorm

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP0  = 0xE0
	markerAPP14 = 0xEE
	markerAPP15 = 0xEF
	markerCOM   = 0xFE
)

// jpegMetadataSegments returns the APPn and COM segments (marker included)
// that precede the first scan. EXIF lives in APP1 and ICC profiles in APP2.
// APP0 (JFIF) and APP14 (Adobe) describe the original encoding's color
// transform and would misdescribe the re-encoded stream, so they are dropped.
func jpegMetadataSegments(data []byte) [][]byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil
	}
	var segs [][]byte
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			break
		}
		marker := data[i+1]
		if marker == 0xFF {
			i++
			continue
		}
		if marker == markerSOS || marker == markerEOI {
			break
		}
		if (marker >= 0xD0 && marker <= 0xD7) || marker == 0x01 {
			i += 2
			continue
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		if length < 2 || i+2+length > len(data) {
			break
		}
		if carriedMarker(marker) {
			segs = append(segs, data[i:i+2+length])
		}
		i += 2 + length
	}
	return segs
}

func carriedMarker(marker byte) bool {
	if marker == markerAPP0 || marker == markerAPP14 {
		return false
	}
	return (marker > markerAPP0 && marker <= markerAPP15) || marker == markerCOM
}

// spliceJPEGMetadata inserts segs directly after the SOI marker of encoded.
// The standard library encoder writes no APPn segments of its own.
func spliceJPEGMetadata(encoded []byte, segs [][]byte) []byte {
	if len(segs) == 0 || len(encoded) < 2 {
		return encoded
	}
	size := len(encoded)
	for _, s := range segs {
		size += len(s)
	}
	out := make([]byte, 0, size)
	out = append(out, encoded[:2]...)
	for _, s := range segs {
		out = append(out, s...)
	}
	return append(out, encoded[2:]...)
}
