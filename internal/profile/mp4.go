package profile

type MP4 struct{}

func init() {
	Register(&MP4{})
}

func (p *MP4) GetName() string {
	return "mp4"
}

func (p *MP4) GetExtension() string {
	return ".mp4"
}

func (p *MP4) GetMIMEType() string {
	return "video/mp4"
}

func (p *MP4) GetVideoCodec() string {
	return "libx264"
}

func (p *MP4) GetAudioCodec() string {
	return "aac"
}

func (p *MP4) GetVideoBitrate() string {
	return "4M"
}

func (p *MP4) GetAudioBitrate() string {
	return "128k"
}

func (p *MP4) GetEncoderOptions() map[string]interface{} {
	return map[string]interface{}{
		"profile:v": "high",
		"level":     "4.0",
		"preset":    "medium",
		"movflags":  "+faststart",
		"x264opts":  "no-scenecut",
	}
}
