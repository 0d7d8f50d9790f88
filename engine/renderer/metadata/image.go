package metadata

// ImageData holds decoded pixels ready for upload. Pixels are tightly packed
// RGBA8 rows, top row first.
type ImageData struct {
	ChannelCount uint8
	Width        uint32
	Height       uint32
	Pixels       []uint8
}

// ImageParams tweak how an image is decoded.
type ImageParams struct {
	// FlipY stores the bottom row first.
	FlipY bool
}
