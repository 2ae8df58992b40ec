//go:build darwin && cgo

package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <dlfcn.h>

// Missing from the macOS 15 SDK headers but still exported by the dylib.
typedef CGImageRef (*windowListImageFn)(CGRect, uint32_t, uint32_t, uint32_t);

static windowListImageFn windowListImage(void) {
    static windowListImageFn fn = NULL;
    if (!fn) {
        fn = (windowListImageFn)dlsym(RTLD_DEFAULT, "CGWindowListCreateImage");
    }
    return fn;
}

// renderRect draws the on-screen contents of (x, y, w, h), in global
// display points, into dst as w*h RGBA pixels. Retina images are scaled
// down to points so pixel and pointer coordinates agree.
// Returns 0 on success, -1 when the symbol is missing, -2 when no image
// was produced, -3 when the bitmap context cannot be created.
static int renderRect(double x, double y, int w, int h, void *dst) {
    windowListImageFn fn = windowListImage();
    if (!fn) {
        return -1;
    }
    // kCGWindowListOptionOnScreenOnly, kCGNullWindowID, kCGWindowImageDefault
    CGImageRef img = fn(CGRectMake(x, y, w, h), 1, 0, 0);
    if (!img) {
        return -2;
    }
    CGColorSpaceRef cs = CGColorSpaceCreateDeviceRGB();
    CGContextRef ctx = CGBitmapContextCreate(dst, w, h, 8, (size_t)w * 4, cs,
        kCGImageAlphaPremultipliedLast);
    CGColorSpaceRelease(cs);
    if (!ctx) {
        CGImageRelease(img);
        return -3;
    }
    CGContextSetInterpolationQuality(ctx, kCGInterpolationLow);
    CGContextDrawImage(ctx, CGRectMake(0, 0, w, h), img);
    CGContextRelease(ctx);
    CGImageRelease(img);
    return 0;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"image"
	"unsafe"
)

const maxDisplays = 16

// CGCapturer captures through CoreGraphics.
type CGCapturer struct {
	displayID C.CGDirectDisplayID
	bounds    image.Rectangle
}

// NewCGCapturer returns a capturer for the given display (0 = main).
func NewCGCapturer(displayIndex int) (*CGCapturer, error) {
	id := C.CGMainDisplayID()
	if displayIndex != 0 {
		var displays [maxDisplays]C.CGDirectDisplayID
		var count C.uint32_t
		if rc := C.CGGetActiveDisplayList(maxDisplays, &displays[0], &count); rc != 0 {
			return nil, fmt.Errorf("list displays: CGError %d", int(rc))
		}
		if displayIndex < 0 || displayIndex >= int(count) {
			return nil, fmt.Errorf("display index %d out of range (have %d displays)", displayIndex, count)
		}
		id = displays[displayIndex]
	}

	b := C.CGDisplayBounds(id)
	origin := image.Pt(int(b.origin.x), int(b.origin.y))
	return &CGCapturer{
		displayID: id,
		bounds:    image.Rectangle{Min: origin, Max: origin.Add(image.Pt(int(b.size.width), int(b.size.height)))},
	}, nil
}

// NewPlatformCapturer returns the capturer for this platform.
func NewPlatformCapturer(displayIndex int) (Capturer, error) {
	return NewCGCapturer(displayIndex)
}

func (c *CGCapturer) Bounds() image.Rectangle { return c.bounds }

// CaptureRegion renders rect straight into a Go-owned RGBA buffer. The
// result always has rect's size.
func (c *CGCapturer) CaptureRegion(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, fmt.Errorf("empty capture region %v", rect)
	}
	img := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	rc := C.renderRect(C.double(rect.Min.X), C.double(rect.Min.Y),
		C.int(rect.Dx()), C.int(rect.Dy()), unsafe.Pointer(&img.Pix[0]))
	switch rc {
	case 0:
		return img, nil
	case -1:
		return nil, errors.New("CGWindowListCreateImage not available")
	case -2:
		return nil, errors.New("CGWindowListCreateImage returned no image (screen recording permission?)")
	default:
		return nil, fmt.Errorf("create bitmap context for %v", rect)
	}
}
