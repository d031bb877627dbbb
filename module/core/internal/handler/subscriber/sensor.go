package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/service"
)

var _ service.Sensor = (*DeviceSensor)(nil)

const (
	topicPrefix = "/trip/device/"

	suffixLocation   = "location"
	suffixError      = "error"
	suffixPermission = "permission"
	suffixControl    = "control"

	ActionWatch = "watch"
	ActionClear = "clear"
	ActionFix   = "fix"
)

// Topic returns /trip/device/{deviceID}/{suffix}.
func Topic(deviceID, suffix string) string {
	return topicPrefix + deviceID + "/" + suffix
}

// LocationMessage is what the device publishes on its location topic.
// Timestamp is in epoch milliseconds.
type LocationMessage struct {
	DeviceID  string   `json:"device_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type ErrorMessage struct {
	Code    domain.SensorErrorCode `json:"code"`
	Message string                 `json:"message"`
}

type PermissionMessage struct {
	State domain.PermissionState `json:"state"`
}

// ControlMessage is sent to the device to start or stop sampling.
type ControlMessage struct {
	Action       string         `json:"action"`
	WatchID      domain.WatchID `json:"watch_id,omitempty"`
	HighAccuracy bool           `json:"high_accuracy"`
	MaximumAgeMs int64          `json:"maximum_age_ms"`
	TimeoutMs    int64          `json:"timeout_ms"`
}

type fixResult struct {
	pos domain.Position
	err error
}

type deviceWatch struct {
	id         domain.WatchID
	timeout    time.Duration
	timer      *time.Timer
	onPosition func(domain.Position)
	onError    func(error)
}

// DeviceSensor is the platform location sensor of one device, reached over
// MQTT. The device answers control messages with fixes on its location
// topic and failures on its error topic.
type DeviceSensor struct {
	client   mqtt.Client
	deviceID string
	now      func() time.Time

	mu         sync.Mutex
	permission domain.PermissionState
	last       *domain.Position
	nextID     domain.WatchID
	watches    map[domain.WatchID]*deviceWatch
	nextWaiter uint64
	waiters    map[uint64]chan fixResult
}

func NewDeviceSensor(client mqtt.Client, deviceID string) *DeviceSensor {
	return &DeviceSensor{
		client:     client,
		deviceID:   deviceID,
		now:        time.Now,
		permission: domain.PermissionPrompt,
		watches:    make(map[domain.WatchID]*deviceWatch),
		waiters:    make(map[uint64]chan fixResult),
	}
}

func (s *DeviceSensor) Start() error {
	for _, suffix := range []string{suffixLocation, suffixError, suffixPermission} {
		token := s.client.Subscribe(Topic(s.deviceID, suffix), 1, s.handleMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribe %s: %w", suffix, err)
		}
	}
	return nil
}

func (s *DeviceSensor) Permission(_ context.Context) (domain.PermissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission, nil
}

// CurrentPosition answers from the last fix when it is younger than
// opts.MaxCachedAge, otherwise asks the device for a fresh one.
func (s *DeviceSensor) CurrentPosition(ctx context.Context, opts domain.SensorOptions) (domain.Position, error) {
	s.mu.Lock()
	if s.last != nil && opts.MaxCachedAge > 0 && s.now().Sub(s.last.Timestamp) <= opts.MaxCachedAge {
		p := *s.last
		s.mu.Unlock()
		return p, nil
	}
	s.nextWaiter++
	key := s.nextWaiter
	ch := make(chan fixResult, 1)
	s.waiters[key] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.waiters, key)
		s.mu.Unlock()
	}()

	if err := s.publishControl(controlFor(ActionFix, 0, opts), false); err != nil {
		return domain.Position{}, &domain.SensorError{Code: domain.SensorPositionUnavailable, Message: err.Error()}
	}

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		t := time.NewTimer(opts.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case res := <-ch:
		return res.pos, res.err
	case <-timeout:
		return domain.Position{}, &domain.SensorError{Code: domain.SensorTimeout, Message: fmt.Sprintf("no fix within %s", opts.Timeout)}
	case <-ctx.Done():
		return domain.Position{}, ctx.Err()
	}
}

// Watch starts continuous sampling. When opts.Timeout is set and no fix
// arrives within it, onError receives a timeout and the watch stays active.
func (s *DeviceSensor) Watch(opts domain.SensorOptions, onPosition func(domain.Position), onError func(error)) (domain.WatchID, error) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	if err := s.publishControl(controlFor(ActionWatch, id, opts), true); err != nil {
		return 0, &domain.SensorError{Code: domain.SensorPositionUnavailable, Message: err.Error()}
	}

	w := &deviceWatch{id: id, timeout: opts.Timeout, onPosition: onPosition, onError: onError}
	s.mu.Lock()
	s.watches[id] = w
	if w.timeout > 0 {
		w.timer = time.AfterFunc(w.timeout, func() { s.watchdog(id) })
	}
	s.mu.Unlock()

	log.Printf("device sensor: watch started device=%s id=%d", s.deviceID, id)
	return id, nil
}

// ClearWatch stops a watch. Unknown ids are ignored.
func (s *DeviceSensor) ClearWatch(id domain.WatchID) {
	s.mu.Lock()
	w, ok := s.watches[id]
	if ok {
		delete(s.watches, id)
		if w.timer != nil {
			w.timer.Stop()
		}
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.publishControl(ControlMessage{Action: ActionClear, WatchID: id}, true); err != nil {
		log.Printf("device sensor: clear watch failed device=%s id=%d: %v", s.deviceID, id, err)
	}
}

func (s *DeviceSensor) watchdog(id domain.WatchID) {
	s.mu.Lock()
	w, ok := s.watches[id]
	if ok {
		w.timer.Reset(w.timeout)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	w.onError(&domain.SensorError{Code: domain.SensorTimeout, Message: fmt.Sprintf("no fix within %s", w.timeout)})
}

func controlFor(action string, id domain.WatchID, opts domain.SensorOptions) ControlMessage {
	return ControlMessage{
		Action:       action,
		WatchID:      id,
		HighAccuracy: opts.HighAccuracy,
		MaximumAgeMs: opts.MaxCachedAge.Milliseconds(),
		TimeoutMs:    opts.Timeout.Milliseconds(),
	}
}

func (s *DeviceSensor) publishControl(msg ControlMessage, retained bool) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal control: %w", err)
	}
	token := s.client.Publish(Topic(s.deviceID, suffixControl), 1, retained, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish control: %w", err)
	}
	return nil
}

func (s *DeviceSensor) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	topic := msg.Topic()
	switch topic[strings.LastIndex(topic, "/")+1:] {
	case suffixLocation:
		s.handleLocation(msg.Payload())
	case suffixError:
		s.handleError(msg.Payload())
	case suffixPermission:
		s.handlePermission(msg.Payload())
	default:
		log.Printf("device sensor: unexpected topic %s", topic)
	}
}

func (s *DeviceSensor) handleLocation(payload []byte) {
	var raw LocationMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Printf("invalid location message: %v", err)
		return
	}
	if err := validateLocationMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	p := domain.Position{
		Coord:     domain.Coord{Lat: raw.Latitude, Lon: raw.Longitude},
		Accuracy:  raw.Accuracy,
		Timestamp: time.UnixMilli(raw.Timestamp),
		Speed:     raw.Speed,
		Heading:   raw.Heading,
	}

	s.mu.Lock()
	s.last = &p
	if s.permission != domain.PermissionGranted {
		s.permission = domain.PermissionGranted
	}
	s.flushWaiters(fixResult{pos: p})
	watches := s.activeWatches()
	for _, w := range watches {
		if w.timer != nil {
			w.timer.Reset(w.timeout)
		}
	}
	s.mu.Unlock()

	for _, w := range watches {
		w.onPosition(p)
	}
}

func (s *DeviceSensor) handleError(payload []byte) {
	var raw ErrorMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Printf("invalid error message: %v", err)
		return
	}
	sensorErr := &domain.SensorError{Code: raw.Code, Message: raw.Message}

	s.mu.Lock()
	if raw.Code == domain.SensorPermissionDenied {
		s.permission = domain.PermissionDenied
	}
	s.flushWaiters(fixResult{err: sensorErr})
	watches := s.activeWatches()
	s.mu.Unlock()

	for _, w := range watches {
		w.onError(sensorErr)
	}
}

func (s *DeviceSensor) handlePermission(payload []byte) {
	var raw PermissionMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Printf("invalid permission message: %v", err)
		return
	}
	switch raw.State {
	case domain.PermissionGranted, domain.PermissionDenied, domain.PermissionPrompt:
	default:
		log.Printf("validation error: state: unknown permission state %q", raw.State)
		return
	}

	s.mu.Lock()
	s.permission = raw.State
	s.mu.Unlock()
}

// flushWaiters and activeWatches expect s.mu to be held.
func (s *DeviceSensor) flushWaiters(res fixResult) {
	for key, ch := range s.waiters {
		select {
		case ch <- res:
		default:
		}
		delete(s.waiters, key)
	}
}

func (s *DeviceSensor) activeWatches() []*deviceWatch {
	out := make([]*deviceWatch, 0, len(s.watches))
	for _, w := range s.watches {
		out = append(out, w)
	}
	return out
}

func validateLocationMessage(msg *LocationMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
