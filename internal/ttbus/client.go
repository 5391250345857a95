// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ttbus provides the message-bus client shared by every gateway,
// coordinator, and aggregator process, plus the topic-name helpers for
// the fixed subject scheme the fleet communicates over.
//
// The package wraps nats.go with connection management, automatic
// reconnection handling, and subscription tracking.
//
// # Configuration
//
// Configure the client via JSON in the process config:
//
//	{
//	  "nats": {
//	    "address": "nats://localhost:4222",
//	    "username": "user",
//	    "password": "secret"
//	  }
//	}
//
// # Usage
//
// The package provides a singleton client initialized once and retrieved
// globally:
//
//	ttbus.Init(rawConfig)
//	ttbus.Connect()
//
//	client := ttbus.GetClient()
//	client.Subscribe(ttbus.Receive(ownAddress), func(subject string, data []byte) {
//	    ...
//	})
//
// # Thread Safety
//
// All Client methods are safe for concurrent use.
package ttbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/treetalker/ttcloud/pkg/log"
)

var (
	clientOnce     sync.Once
	clientInstance *Client
)

// Client wraps a NATS connection with subscription management.
type Client struct {
	conn          *nats.Conn
	subscriptions []*nats.Subscription
	mu            sync.Mutex
}

// MessageHandler is a callback function for processing received messages.
type MessageHandler func(subject string, data []byte)

// Connect initializes the singleton bus client using the global Keys
// config.
func Connect() {
	clientOnce.Do(func() {
		if Keys.Address == "" {
			log.Warn("ttbus: no address configured, skipping connection")
			return
		}

		client, err := NewClient(nil)
		if err != nil {
			log.Warnf("ttbus: connection failed: %v", err)
			return
		}

		clientInstance = client
	})
}

// GetClient returns the singleton bus client instance.
func GetClient() *Client {
	if clientInstance == nil {
		log.Warn("ttbus: client not initialized")
	}
	return clientInstance
}

// NewClient creates a new bus client. If cfg is nil, uses the global Keys
// config.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Keys
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("bus address is required")
	}

	var opts []nats.Option

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	if cfg.CredsFilePath != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFilePath))
	}

	opts = append(opts, nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
		if err != nil {
			log.Warnf("ttbus: disconnected: %v", err)
		}
	}))

	opts = append(opts, nats.ReconnectHandler(func(nc *nats.Conn) {
		log.Infof("ttbus: reconnected to %s", nc.ConnectedUrl())
	}))

	opts = append(opts, nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
		log.Errorf("ttbus: error: %v", err)
	}))

	nc, err := nats.Connect(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("bus connect failed: %w", err)
	}

	log.Infof("ttbus: connected to %s", cfg.Address)

	return &Client{
		conn:          nc,
		subscriptions: make([]*nats.Subscription, 0),
	}, nil
}

// Subscribe registers a handler for messages on the given subject.
func (c *Client) Subscribe(subject string, handler MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("bus subscribe to '%s' failed: %w", subject, err)
	}

	c.subscriptions = append(c.subscriptions, sub)
	log.Infof("ttbus: subscribed to '%s'", subject)
	return nil
}

// SubscribeQueue registers a handler with queue group for load-balanced
// message processing.
func (c *Client) SubscribeQueue(subject, queue string, handler MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, err := c.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("bus queue subscribe to '%s' (queue: %s) failed: %w", subject, queue, err)
	}

	c.subscriptions = append(c.subscriptions, sub)
	log.Infof("ttbus: queue subscribed to '%s' (queue: %s)", subject, queue)
	return nil
}

// Publish sends data to the specified subject. A publish failure is a
// transient I/O error per the fleet's error model: callers log and carry
// on rather than aborting an evaluation.
func (c *Client) Publish(subject string, data []byte) error {
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("bus publish to '%s' failed: %w", subject, err)
	}
	return nil
}

// Request sends a request and waits for a response, bounded by ctx.
func (c *Client) Request(subject string, data []byte, ctx context.Context) ([]byte, error) {
	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("bus request to '%s' failed: %w", subject, err)
	}
	return msg.Data, nil
}

// Flush flushes the connection buffer to ensure all published messages
// are sent.
func (c *Client) Flush() error {
	return c.conn.Flush()
}

// Close unsubscribes all subscriptions and closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			log.Warnf("ttbus: unsubscribe failed: %v", err)
		}
	}
	c.subscriptions = nil

	if c.conn != nil {
		c.conn.Close()
		log.Info("ttbus: connection closed")
	}
}

// IsConnected returns true if the client has an active connection.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Connection returns the underlying NATS connection for advanced usage.
func (c *Client) Connection() *nats.Conn {
	return c.conn
}
