package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type locationMessage struct {
	DeviceID  string   `json:"device_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type controlMessage struct {
	Action       string `json:"action"`
	WatchID      uint64 `json:"watch_id"`
	HighAccuracy bool   `json:"high_accuracy"`
}

type point struct{ lat, lon float64 }

// route walks from the hotel past the beach to Marble Mountains.
var route = []point{
	{16.0544, 108.2478},
	{16.0470, 108.2490},
	{16.0330, 108.2530},
	{16.0180, 108.2580},
	{16.0036, 108.2628},
}

const stepMeters = 40.0

type walker struct {
	leg      int
	progress float64
}

// next advances stepMeters along the route and loops back at the end.
func (w *walker) next() point {
	from, to := route[w.leg], route[(w.leg+1)%len(route)]
	legMeters := approxMeters(from, to)
	w.progress += stepMeters / legMeters
	if w.progress >= 1 {
		w.progress = 0
		w.leg = (w.leg + 1) % len(route)
		return to
	}
	return point{
		lat: from.lat + (to.lat-from.lat)*w.progress,
		lon: from.lon + (to.lon-from.lon)*w.progress,
	}
}

func approxMeters(a, b point) float64 {
	dLat := (b.lat - a.lat) * 111320
	dLon := (b.lon - a.lon) * 111320 * math.Cos(a.lat*math.Pi/180)
	return math.Hypot(dLat, dLon)
}

func topic(deviceID, suffix string) string {
	return fmt.Sprintf("/trip/device/%s/%s", deviceID, suffix)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}
	deviceID := "phone-1"
	if v := os.Getenv("DEVICE_ID"); v != "" {
		deviceID = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("trip-device-" + deviceID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	controls := make(chan controlMessage, 8)
	token := client.Subscribe(topic(deviceID, "control"), 1, func(_ mqtt.Client, msg mqtt.Message) {
		var ctl controlMessage
		if err := json.Unmarshal(msg.Payload(), &ctl); err != nil {
			log.Printf("invalid control message: %v", err)
			return
		}
		controls <- ctl
	})
	if token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt subscribe: %v", token.Error())
	}

	permission, _ := json.Marshal(map[string]string{"state": "granted"})
	client.Publish(topic(deviceID, "permission"), 1, true, permission).Wait()

	log.Printf("device %s connected to %s, fix every %ds while watched", deviceID, broker, intervalSec)

	w := &walker{}
	publishFix := func(highAccuracy bool) {
		p := w.next()
		accuracy := 25.0
		if highAccuracy {
			accuracy = 5.0
		}
		speed := stepMeters / float64(intervalSec)
		msg := locationMessage{
			DeviceID:  deviceID,
			Latitude:  p.lat + (rand.Float64()-0.5)*0.00005, // ~3m jitter
			Longitude: p.lon + (rand.Float64()-0.5)*0.00005,
			Accuracy:  accuracy,
			Speed:     &speed,
			Timestamp: time.Now().UnixMilli(),
		}
		payload, _ := json.Marshal(msg)
		client.Publish(topic(deviceID, "location"), 1, false, payload).Wait()
		log.Printf("published to %s: %s", topic(deviceID, "location"), payload)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	var ticker *time.Ticker
	var tick <-chan time.Time
	highAccuracy := false
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stopTicker()

	for {
		select {
		case ctl := <-controls:
			switch ctl.Action {
			case "watch":
				stopTicker()
				highAccuracy = ctl.HighAccuracy
				ticker = time.NewTicker(time.Duration(intervalSec) * time.Second)
				tick = ticker.C
				log.Printf("watch %d started high_accuracy=%v", ctl.WatchID, ctl.HighAccuracy)
				publishFix(highAccuracy)
			case "clear":
				stopTicker()
				log.Printf("watch %d cleared", ctl.WatchID)
			case "fix":
				publishFix(ctl.HighAccuracy)
			default:
				log.Printf("unknown control action %q", ctl.Action)
			}
		case <-tick:
			publishFix(highAccuracy)
		case <-sig:
			log.Println("shutting down")
			return
		}
	}
}
