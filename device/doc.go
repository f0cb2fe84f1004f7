// SPDX-License-Identifier: EPL-2.0

// Package device drives a processing node the way an audio device does:
// by calling Process with windows whose length the device picks.
//
// Offline has no hardware clock. It runs a repeating schedule of window
// sizes as fast as the node allows, feeding input from an audio.Source and
// handing every output window to a Sink such as a wav.Writer:
//
//	d, err := device.NewOffline(node, 1, 2,
//		device.WithInput(src),
//		device.WithSink(w),
//		device.WithBufferSizes(128, 441),
//	)
//	stats, err := d.Run(ctx, 48000*10)
//
// Stats reports per-channel peak and RMS levels of what was rendered.
package device
