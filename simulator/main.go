// Command simulator publishes synthetic demand reports to an MQTT
// broker so a running coordinator has load to schedule.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kianlev/gridflex/infra/mqtt"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	consumers := GenerateConsumers(cfg, rng)

	cli, err := newMQTTClient(cfg.Broker, cfg.ClientID)
	if err != nil {
		log.Fatalf("mqtt connect: %v", err)
	}
	defer cli.Disconnect(250)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c, mw := nextDemand(cfg, consumers, rng)
			msg := mqtt.DemandMessage{
				ConsumerID: c.ID,
				Class:      c.Class,
				MegaWatts:  mw,
				Timestamp:  time.Now().Unix(),
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Printf("marshal: %v", err)
				continue
			}
			if token := cli.Publish(cfg.Topic, 1, false, payload); token.Wait() && token.Error() != nil {
				log.Printf("publish: %v", token.Error())
				continue
			}
			log.Printf("published %s %s %.1f MW", c.ID, c.Class, mw)
		}
	}
}
