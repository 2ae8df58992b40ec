// Package protocol implements the wire formats of the three session
// channels. Every integer is a big-endian signed 32-bit value and a bool
// is a single byte, so streams interoperate with any DataOutputStream
// style peer.
//
// Image channel (host to controller):
//
//	handshake, once:  sourceWidth sourceHeight targetWidth targetHeight compressionEnabled
//	then repeating:   payloadLength payload[payloadLength]
//
// Cursor channel (controller to host), repeating:
//
//	1 x y | 2 button | 3 button | 4 | 5
//
// Keyboard channel (controller to host), repeating:
//
//	6 keyCode | 7 keyCode
//
// Writers do not buffer across events: callers wrap the connection in a
// bufio.Writer and Flush after each frame or event.
package protocol
