package profile

// Default is the profile used when none is requested.
const Default = "webm"

type WebM struct{}

func init() {
	Register(&WebM{})
}

func (p *WebM) GetName() string {
	return "webm"
}

func (p *WebM) GetExtension() string {
	return ".webm"
}

func (p *WebM) GetMIMEType() string {
	return "video/webm"
}

func (p *WebM) GetVideoCodec() string {
	return "libvpx-vp9"
}

func (p *WebM) GetAudioCodec() string {
	return "libopus"
}

func (p *WebM) GetVideoBitrate() string {
	return "2M"
}

func (p *WebM) GetAudioBitrate() string {
	return "128k"
}

func (p *WebM) GetEncoderOptions() map[string]interface{} {
	return map[string]interface{}{
		"deadline":       "good",
		"cpu-used":       2,
		"row-mt":         1,
		"tile-columns":   2,
		"frame-parallel": 1,
		"auto-alt-ref":   1,
		"lag-in-frames":  25,
	}
}
