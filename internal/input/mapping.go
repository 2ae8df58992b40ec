package input

// MapPoint converts a position inside the local view into source display
// coordinates: x*sourceWidth/viewWidth, y*sourceHeight/viewHeight. The
// result is clamped into [0,sourceWidth) x [0,sourceHeight) so drags that
// leave the view never produce out-of-range moves. ok is false when any
// dimension is non-positive.
func MapPoint(localX, localY, viewWidth, viewHeight, sourceWidth, sourceHeight int) (x, y int32, ok bool) {
	if viewWidth <= 0 || viewHeight <= 0 || sourceWidth <= 0 || sourceHeight <= 0 {
		return 0, 0, false
	}
	mx := int64(localX) * int64(sourceWidth) / int64(viewWidth)
	my := int64(localY) * int64(sourceHeight) / int64(viewHeight)
	return int32(clamp(mx, int64(sourceWidth)-1)), int32(clamp(my, int64(sourceHeight)-1)), true
}

func clamp(v, max int64) int64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
