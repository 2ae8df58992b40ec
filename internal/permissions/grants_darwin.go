//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation -framework CoreGraphics
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <CoreGraphics/CoreGraphics.h>

// axTrusted reports whether the process may post input events. With
// prompt set, macOS opens the Accessibility pane if it may not.
static int axTrusted(int prompt) {
    const void *keys[] = { kAXTrustedCheckOptionPrompt };
    const void *vals[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
    CFDictionaryRef opts = CFDictionaryCreate(NULL, keys, vals, 1,
        &kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
    Boolean ok = AXIsProcessTrustedWithOptions(opts);
    CFRelease(opts);
    return ok ? 1 : 0;
}

// screenCapture reports Screen Recording access (macOS 10.15+). With
// prompt set, the system dialog is shown once per process.
static int screenCapture(int prompt) {
    return (prompt ? CGRequestScreenCaptureAccess() : CGPreflightScreenCaptureAccess()) ? 1 : 0;
}
*/
import "C"

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func platformGrants() []grant {
	return []grant{
		{
			name:    "Screen Recording",
			has:     func() bool { return C.screenCapture(cbool(false)) != 0 },
			request: func() bool { return C.screenCapture(cbool(true)) != 0 },
		},
		{
			name:    "Accessibility",
			has:     func() bool { return C.axTrusted(cbool(false)) != 0 },
			request: func() bool { return C.axTrusted(cbool(true)) != 0 },
		},
	}
}
