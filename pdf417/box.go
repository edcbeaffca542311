package pdf417

import (
	"fmt"

	"github.com/ericlevine/zxscan"
)

// boundingBox is the codeword area of a symbol: the region between the
// start pattern and the stop pattern. A side whose corners were not found
// runs along the image edge.
type boundingBox struct {
	width, height int

	topLeft, bottomLeft, topRight, bottomRight zxscan.ResultPoint

	minX, maxX, minY, maxY int
}

func newBoundingBox(width, height int, topLeft, bottomLeft, topRight, bottomRight *zxscan.ResultPoint) (*boundingBox, error) {
	leftMissing := topLeft == nil || bottomLeft == nil
	rightMissing := topRight == nil || bottomRight == nil
	if leftMissing && rightMissing {
		return nil, fmt.Errorf("no corners for bounding box: %w", zxscan.ErrNotFound)
	}
	b := &boundingBox{width: width, height: height}
	switch {
	case leftMissing:
		b.topRight, b.bottomRight = *topRight, *bottomRight
		b.topLeft = zxscan.ResultPoint{X: 0, Y: topRight.Y}
		b.bottomLeft = zxscan.ResultPoint{X: 0, Y: bottomRight.Y}
	case rightMissing:
		b.topLeft, b.bottomLeft = *topLeft, *bottomLeft
		b.topRight = zxscan.ResultPoint{X: float64(width - 1), Y: topLeft.Y}
		b.bottomRight = zxscan.ResultPoint{X: float64(width - 1), Y: bottomLeft.Y}
	default:
		b.topLeft, b.bottomLeft, b.topRight, b.bottomRight = *topLeft, *bottomLeft, *topRight, *bottomRight
	}
	b.minX = int(min(b.topLeft.X, b.bottomLeft.X))
	b.maxX = int(max(b.topRight.X, b.bottomRight.X))
	b.minY = int(min(b.topLeft.Y, b.topRight.Y))
	b.maxY = int(max(b.bottomLeft.Y, b.bottomRight.Y))
	return b, nil
}

// mergeBoxes takes the left side of left and the right side of right.
func mergeBoxes(left, right *boundingBox) (*boundingBox, error) {
	if left == nil {
		return right, nil
	}
	if right == nil {
		return left, nil
	}
	return newBoundingBox(left.width, left.height, &left.topLeft, &left.bottomLeft, &right.topRight, &right.bottomRight)
}

// addMissingRows stretches one side of the box by the given number of pixel
// rows at the top and bottom, clamped to the image.
func (b *boundingBox) addMissingRows(top, bottom int, left bool) (*boundingBox, error) {
	tl, bl, tr, br := b.topLeft, b.bottomLeft, b.topRight, b.bottomRight
	if top > 0 {
		p := &tr
		if left {
			p = &tl
		}
		p.Y = float64(max(int(p.Y)-top, 0))
	}
	if bottom > 0 {
		p := &br
		if left {
			p = &bl
		}
		p.Y = float64(min(int(p.Y)+bottom, b.height-1))
	}
	return newBoundingBox(b.width, b.height, &tl, &bl, &tr, &br)
}
