package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mastercactapus/monitorman/board"
)

const defaultTopicPrefix = "monitorman"

// bridge mirrors state to an MQTT broker and accepts step commands from it.
//
// Topics:
//   <prefix>/state  retained label text, published on every change
//   <prefix>/cmd    "next" or "prev"
type bridge struct {
	opts   *paho.ClientOptions
	prefix string
	mirror *board.Mirror
	ctl    stepper
}

func clientID() string {
	id, err := machineid.ProtectedID("monitorman")
	if err != nil {
		return fmt.Sprintf("monitorman-%d", os.Getpid())
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return "monitorman-" + id
}

// mqttOptions creates client options from a broker URL. The URL path, if
// any, is the topic prefix.
func mqttOptions(brokerURL, id string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	if u.Host == "" {
		return nil, "", fmt.Errorf("no broker host in %q", brokerURL)
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	opts := paho.NewClientOptions().
		AddBroker(scheme + "://" + u.Host).
		SetClientID(id).
		SetAutoReconnect(false).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("ERROR: mqtt connection lost: %v", err)
		})
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pass, ok := u.User.Password(); ok {
			opts.SetPassword(pass)
		}
	}

	prefix := strings.Trim(u.Path, "/")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return opts, prefix, nil
}

func newBridge(brokerURL string, m *board.Mirror, ctl stepper) (*bridge, error) {
	opts, prefix, err := mqttOptions(brokerURL, clientID())
	if err != nil {
		return nil, err
	}
	return &bridge{opts: opts, prefix: prefix, mirror: m, ctl: ctl}, nil
}

func (b *bridge) handleCommand(_ paho.Client, msg paho.Message) {
	if err := b.ctl.Do(strings.TrimSpace(string(msg.Payload()))); err != nil {
		log.Printf("ERROR: mqtt command: %v", err)
	}
}

func (b *bridge) Run(ctx context.Context) error {
	client := paho.NewClient(b.opts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", t.Error())
	}
	defer client.Disconnect(250)
	log.Printf("mqtt connected, topic prefix %s", b.prefix)

	if t := client.Subscribe(b.prefix+"/cmd", 0, b.handleCommand); t.Wait() && t.Error() != nil {
		return fmt.Errorf("mqtt subscribe: %w", t.Error())
	}

	updates, unsubscribe := b.mirror.Subscribe()
	defer unsubscribe()
	if _, ok := b.mirror.Current(); ok {
		if err := b.publish(client, b.mirror.Label()); err != nil {
			log.Printf("ERROR: %v", err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-updates:
			if err := b.publish(client, s.String()); err != nil {
				log.Printf("ERROR: %v", err)
			}
		}
	}
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// publish sends label as the retained state and waits for the result.
func (b *bridge) publish(p publisher, label string) error {
	if t := p.Publish(b.prefix+"/state", 0, true, label); t.Wait() && t.Error() != nil {
		return fmt.Errorf("mqtt publish: %w", t.Error())
	}
	return nil
}
