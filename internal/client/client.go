package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"party-service/internal/models"
	"party-service/internal/playback"
)

// ErrPartyGone reports that the party no longer exists.
var ErrPartyGone = errors.New("party not found")

// ErrNotMember reports an operation that requires active membership.
var ErrNotMember = errors.New("not in a party")

// Callbacks receive live updates while the client is a member. All callbacks
// are invoked from the subscription goroutines.
type Callbacks struct {
	OnSnapshot func(models.Party)
	OnMessage  func(models.ChatMessage)
	OnReaction func(models.Reaction)
	OnExit     func(State)
}

// Config configures a PartyClient.
type Config struct {
	BaseURL    string
	Token      string
	LocalUID   string
	Surface    playback.PlaybackSurface
	HTTPClient *http.Client
	Callbacks  Callbacks
}

// PartyClient drives one client's participation in a party: the REST calls,
// the three live subscriptions, the playback engine and the reaction overlay.
type PartyClient struct {
	cfg  Config
	http *http.Client

	mu         sync.Mutex
	state      State
	partyID    string
	engine     *playback.Engine
	overlay    *ReactionOverlay
	conns      []*websocket.Conn
	lastStatus models.PlaybackStatus
}

// New constructs a PartyClient in the Unjoined state.
func New(cfg Config) *PartyClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PartyClient{cfg: cfg, http: httpClient, state: Unjoined}
}

// State returns the current state machine position.
func (c *PartyClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Overlay returns the live reaction overlay, or nil outside membership.
func (c *PartyClient) Overlay() *ReactionOverlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay
}

// Create starts a new party with the local user as host and enters it.
func (c *PartyClient) Create(ctx context.Context, media models.Media, isPublic bool) (models.Party, error) {
	c.setState(Joining)
	var party models.Party
	err := c.doJSON(ctx, http.MethodPost, "/parties", map[string]interface{}{
		"media":     media,
		"is_public": isPublic,
	}, &party)
	if err != nil {
		c.setState(Unjoined)
		return models.Party{}, err
	}
	if err := c.attach(ctx, party); err != nil {
		c.setState(Unjoined)
		return models.Party{}, err
	}
	return party, nil
}

// Join enters an existing party as a guest (or as the returning host).
func (c *PartyClient) Join(ctx context.Context, partyID string) (models.Party, error) {
	c.setState(Joining)
	var party models.Party
	err := c.doJSON(ctx, http.MethodPost, "/parties/"+partyID+"/join", nil, &party)
	if err != nil {
		c.setState(Unjoined)
		return models.Party{}, err
	}
	if err := c.attach(ctx, party); err != nil {
		c.setState(Unjoined)
		return models.Party{}, err
	}
	return party, nil
}

// JoinFromLink treats an invite link as an implicit join instruction.
func (c *PartyClient) JoinFromLink(ctx context.Context, link string) (models.Party, error) {
	partyID, err := ParseInviteLink(link)
	if err != nil {
		return models.Party{}, err
	}
	return c.Join(ctx, partyID)
}

// Leave exits the party. All three subscriptions are torn down synchronously
// before Leave returns; leaked callbacks into a departed client are a bug,
// not a nicety.
func (c *PartyClient) Leave(ctx context.Context) error {
	c.mu.Lock()
	partyID := c.partyID
	c.mu.Unlock()
	if partyID == "" {
		return ErrNotMember
	}

	err := c.doJSON(ctx, http.MethodPost, "/parties/"+partyID+"/leave", nil, nil)
	c.exit(UserLeft)
	return err
}

// Terminate deletes the party. Host only; guests get an error from the server.
func (c *PartyClient) Terminate(ctx context.Context) error {
	c.mu.Lock()
	partyID := c.partyID
	c.mu.Unlock()
	if partyID == "" {
		return ErrNotMember
	}

	err := c.doJSON(ctx, http.MethodDelete, "/parties/"+partyID, nil, nil)
	if err != nil {
		return err
	}
	c.exit(Terminated)
	return nil
}

// SendMessage appends a chat message. Failures are logged, never surfaced: a
// dropped message must not stall the session.
func (c *PartyClient) SendMessage(ctx context.Context, text string) {
	c.mu.Lock()
	partyID := c.partyID
	c.mu.Unlock()
	if partyID == "" {
		return
	}
	if err := c.doJSON(ctx, http.MethodPost, "/parties/"+partyID+"/messages", map[string]string{"text": text}, nil); err != nil {
		log.Printf("chat send failed: %v", err)
	}
}

// SendReaction appends a fire-and-forget reaction. Same policy as chat sends.
func (c *PartyClient) SendReaction(ctx context.Context, label string) {
	c.mu.Lock()
	partyID := c.partyID
	c.mu.Unlock()
	if partyID == "" {
		return
	}
	if err := c.doJSON(ctx, http.MethodPost, "/parties/"+partyID+"/reactions", map[string]string{"label": label}, nil); err != nil {
		log.Printf("reaction send failed: %v", err)
	}
}

// NotifyPlay, NotifyPause and NotifySeek push the host's local player events
// to the shared status. Guests' engines ignore them.
func (c *PartyClient) NotifyPlay(ctx context.Context) error {
	return c.pushState(ctx, true)
}

func (c *PartyClient) NotifyPause(ctx context.Context) error {
	return c.pushState(ctx, false)
}

func (c *PartyClient) NotifySeek(ctx context.Context) error {
	c.mu.Lock()
	playing := c.lastStatus.IsPlaying
	c.mu.Unlock()
	return c.pushState(ctx, playing)
}

// NotifyEpisodeChange pushes a season/episode change; a separate write from
// play/pause/seek but the same host-authoritative path.
func (c *PartyClient) NotifyEpisodeChange(ctx context.Context, season, episode int) error {
	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()
	if engine == nil {
		return ErrNotMember
	}
	return engine.PushEpisode(ctx, season, episode)
}

// Close tears down all subscriptions without leaving the party on the server.
func (c *PartyClient) Close() {
	c.exit(Unjoined)
}

func (c *PartyClient) pushState(ctx context.Context, isPlaying bool) error {
	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()
	if engine == nil {
		return ErrNotMember
	}
	return engine.PushState(ctx, isPlaying)
}

// attach opens the three subscriptions and moves the client to Member.
func (c *PartyClient) attach(ctx context.Context, party models.Party) error {
	role := playback.RoleFor(c.cfg.LocalUID, party)
	engine := playback.NewEngine(role, party.ID, c.cfg.Surface, c)
	overlay, err := NewReactionOverlay(DefaultOverlaySize, DefaultOverlayTTL)
	if err != nil {
		return err
	}

	sessionConn, err := c.dial(ctx, "/ws/parties/"+party.ID)
	if err != nil {
		return err
	}
	chatConn, err := c.dial(ctx, "/ws/parties/"+party.ID+"/chat")
	if err != nil {
		sessionConn.Close()
		return err
	}
	reactionConn, err := c.dial(ctx, "/ws/parties/"+party.ID+"/reactions")
	if err != nil {
		sessionConn.Close()
		chatConn.Close()
		return err
	}

	c.mu.Lock()
	c.state = Member
	c.partyID = party.ID
	c.engine = engine
	c.overlay = overlay
	c.lastStatus = party.Status
	c.conns = []*websocket.Conn{sessionConn, chatConn, reactionConn}
	c.mu.Unlock()

	go c.readSession(sessionConn)
	go c.readChat(chatConn)
	go c.readReactions(reactionConn)
	return nil
}

func (c *PartyClient) readSession(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.exitIfMember(Errored)
			return
		}
		var event models.PartyEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Printf("bad session event: %v", err)
			continue
		}
		switch event.Type {
		case models.PartyEventSnapshot:
			if event.Party == nil {
				continue
			}
			c.mu.Lock()
			c.lastStatus = event.Party.Status
			engine := c.engine
			c.mu.Unlock()
			if engine != nil {
				engine.Reconcile(event.Party.Status)
			}
			if c.cfg.Callbacks.OnSnapshot != nil {
				c.cfg.Callbacks.OnSnapshot(*event.Party)
			}
		case models.PartyEventDeleted:
			// Terminal: the party is gone for everyone.
			c.exitIfMember(Terminated)
			return
		}
	}
}

func (c *PartyClient) readChat(conn *websocket.Conn) {
	// A message committed while the backlog replays can arrive both live and
	// in the replay; the record id dedups the overlap.
	seen := make(map[int]struct{})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var event models.ChatEvent
		if err := json.Unmarshal(payload, &event); err != nil || event.Message == nil {
			continue
		}
		if _, dup := seen[event.Message.ID]; dup {
			continue
		}
		seen[event.Message.ID] = struct{}{}
		if c.cfg.Callbacks.OnMessage != nil {
			c.cfg.Callbacks.OnMessage(*event.Message)
		}
	}
}

func (c *PartyClient) readReactions(conn *websocket.Conn) {
	seen := make(map[int]struct{})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var event models.ReactionEvent
		if err := json.Unmarshal(payload, &event); err != nil || event.Reaction == nil {
			continue
		}
		if _, dup := seen[event.Reaction.ID]; dup {
			continue
		}
		seen[event.Reaction.ID] = struct{}{}
		c.mu.Lock()
		overlay := c.overlay
		c.mu.Unlock()
		if overlay != nil {
			overlay.Add(*event.Reaction)
		}
		if c.cfg.Callbacks.OnReaction != nil {
			c.cfg.Callbacks.OnReaction(*event.Reaction)
		}
	}
}

// exit closes every subscription synchronously and reports the terminal state.
func (c *PartyClient) exit(terminal State) {
	c.mu.Lock()
	if c.state != Member && c.state != Joining {
		c.mu.Unlock()
		return
	}
	conns := c.conns
	c.conns = nil
	c.state = terminal
	c.partyID = ""
	c.engine = nil
	c.overlay = nil
	c.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	if c.cfg.Callbacks.OnExit != nil && terminal != Unjoined {
		c.cfg.Callbacks.OnExit(terminal)
	}
}

func (c *PartyClient) exitIfMember(terminal State) {
	c.mu.Lock()
	member := c.state == Member
	c.mu.Unlock()
	if member {
		c.exit(terminal)
	}
}

func (c *PartyClient) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *PartyClient) dial(ctx context.Context, path string) (*websocket.Conn, error) {
	wsURL := strings.Replace(c.cfg.BaseURL, "http", "ws", 1) + path
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.Token)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// UpdateStatus implements playback.StatusWriter over the REST API.
func (c *PartyClient) UpdateStatus(ctx context.Context, partyID string, isPlaying bool, currentTime float64) error {
	return c.doJSON(ctx, http.MethodPost, "/parties/"+partyID+"/status", map[string]interface{}{
		"is_playing":   isPlaying,
		"current_time": currentTime,
	}, nil)
}

// UpdateEpisode implements playback.StatusWriter over the REST API.
func (c *PartyClient) UpdateEpisode(ctx context.Context, partyID string, season, episode int) error {
	return c.doJSON(ctx, http.MethodPost, "/parties/"+partyID+"/episode", map[string]int{
		"season":  season,
		"episode": episode,
	}, nil)
}

func (c *PartyClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrPartyGone
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
