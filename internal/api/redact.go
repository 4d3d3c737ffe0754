package api

import "github.com/nightloom/nightcore/internal/night"

// redactForViewer clears every seat's Role except the viewer's own and
// (once a wolf themselves) the rest of the wolf team — the night core's
// own snapshot is full truth from the server's perspective, so per-viewer
// redaction is the transport-adjacent concern's job, generalizing
// wolverix handlers.go's filterSessionForPlayer to the night role catalog.
func redactForViewer(state night.BroadcastGameState, viewerUID string) night.BroadcastGameState {
	viewerIsWolf := false
	for _, p := range state.Players {
		if p.UID == viewerUID && night.TeamOf(night.RoleId(p.Role)) == night.TeamWolf {
			viewerIsWolf = true
			break
		}
	}

	redacted := make(map[string]night.BroadcastPlayer, len(state.Players))
	for key, p := range state.Players {
		if p.UID == viewerUID || (viewerIsWolf && night.TeamOf(night.RoleId(p.Role)) == night.TeamWolf) {
			redacted[key] = p
			continue
		}
		hidden := p
		hidden.Role = ""
		redacted[key] = hidden
	}
	state.Players = redacted
	return state
}
