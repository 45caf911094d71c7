// Package meeting generates meeting links for sessions. The rest of the
// application treats the returned URL as opaque.
package meeting

import "github.com/google/uuid"

// Link is an externally-routable meeting URL plus its platform tag.
type Link struct {
	URL      string `json:"meeting_url"`
	Platform string `json:"meeting_platform"`
}

// Generator produces a fresh meeting link per session.
type Generator interface {
	NewLink() Link
}

// JitsiGenerator creates ad-hoc Jitsi rooms. Jitsi rooms need no
// provisioning; the room exists as soon as someone opens the URL.
type JitsiGenerator struct{}

// NewJitsiGenerator returns a generator for ad-hoc Jitsi rooms.
func NewJitsiGenerator() JitsiGenerator {
	return JitsiGenerator{}
}

func (JitsiGenerator) NewLink() Link {
	room := uuid.NewString()[:8]
	return Link{
		URL:      "https://meet.jit.si/SkillSwap-" + room,
		Platform: "JITSI",
	}
}
