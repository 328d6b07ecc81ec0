package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Profile defines how an export is encoded: container, codecs and rates.
type Profile interface {
	// GetName returns the profile name, which is also the container format
	GetName() string

	// GetExtension returns the output file extension including the dot
	GetExtension() string

	// GetMIMEType returns the MIME type of the finalized artifact
	GetMIMEType() string

	// GetVideoCodec returns the ffmpeg video encoder
	GetVideoCodec() string

	// GetAudioCodec returns the ffmpeg audio encoder
	GetAudioCodec() string

	// GetVideoBitrate returns the bitrate used when the source bitrate is unknown
	GetVideoBitrate() string

	// GetAudioBitrate returns the audio bitrate
	GetAudioBitrate() string

	// GetEncoderOptions returns extra encoder flags
	GetEncoderOptions() map[string]interface{}
}

var profiles = make(map[string]Profile)

// Register adds a profile to the registry
func Register(p Profile) {
	profiles[p.GetName()] = p
}

// Get returns a profile by name. The empty name selects the default.
func Get(name string) (Profile, error) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	if name == "" {
		name = Default
	}
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s (supported: %s)",
			name, strings.Join(GetSupported(), ", "))
	}
	return p, nil
}

// GetSupported returns the registered profile names, sorted
func GetSupported() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
