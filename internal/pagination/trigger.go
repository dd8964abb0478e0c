package pagination

// ScrollPosition describes a scroll container along its scrolling axis, in pixels.
type ScrollPosition struct {
	Offset        int // scrollTop / scrollLeft
	ViewportSize  int // clientHeight / clientWidth
	ContentLength int // scrollHeight / scrollWidth
}

// NearEnd reports whether the visible window reaches within threshold pixels
// of the end of the content.
func NearEnd(pos ScrollPosition, threshold int) bool {
	return pos.Offset+pos.ViewportSize >= pos.ContentLength-threshold
}
