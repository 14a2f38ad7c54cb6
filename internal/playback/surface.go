package playback

// PlaybackSurface is the capability set the sync engine needs from whatever
// concrete embedded player a client runs. One implementation per player
// backend.
type PlaybackSurface interface {
	CurrentTime() float64
	SeekTo(seconds float64) error
	Play() error
	Pause() error
}
