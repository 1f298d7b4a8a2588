package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/USA-RedDragon/arm-panel/internal/config"
)

// Service is a bound request/response endpoint.
type Service struct {
	transport Transport
	name      string
	typ       string
	released  *atomic.Bool
}

func (s *Service) Call(ctx context.Context, args any) (json.RawMessage, error) {
	if s.released.Load() {
		return nil, ErrChannelReleased
	}
	return s.transport.CallService(ctx, s.name, s.typ, args)
}

// Topic is a bound outbound fire-and-forget channel.
type Topic struct {
	transport Transport
	name      string
	released  *atomic.Bool
}

func (t *Topic) Publish(msg any) error {
	if t.released.Load() {
		return ErrChannelReleased
	}
	return t.transport.Publish(t.name, msg)
}

// ChannelSet is the four channels bound for one Connected period. All of them
// are released together by a single flag.
type ChannelSet struct {
	MoveJoint *Service
	Gripper   *Topic
	Script    *Topic

	transport   Transport
	resultTopic string
	released    *atomic.Bool
}

func (cs *ChannelSet) Released() bool {
	return cs.released.Load()
}

type Registry struct {
	topics   config.Topics
	onResult func(json.RawMessage)
}

func NewRegistry(topics config.Topics, onResult func(json.RawMessage)) *Registry {
	return &Registry{
		topics:   topics,
		onResult: onResult,
	}
}

// Bind advertises the outbound topics and subscribes to results. On any
// failure everything already bound is undone, so a ChannelSet is never
// partially bound.
func (r *Registry) Bind(t Transport) (*ChannelSet, error) {
	released := &atomic.Bool{}
	cs := &ChannelSet{
		MoveJoint: &Service{
			transport: t,
			name:      r.topics.MoveJointService,
			typ:       r.topics.MoveJointType,
			released:  released,
		},
		Gripper: &Topic{
			transport: t,
			name:      r.topics.GripperTopic,
			released:  released,
		},
		Script: &Topic{
			transport: t,
			name:      r.topics.ScriptTopic,
			released:  released,
		},
		transport:   t,
		resultTopic: r.topics.ScriptResultTopic,
		released:    released,
	}

	if err := t.Advertise(r.topics.GripperTopic, r.topics.GripperType); err != nil {
		released.Store(true)
		return nil, fmt.Errorf("failed to advertise %s: %w", r.topics.GripperTopic, err)
	}
	if err := t.Advertise(r.topics.ScriptTopic, r.topics.ScriptType); err != nil {
		released.Store(true)
		_ = t.Unadvertise(r.topics.GripperTopic)
		return nil, fmt.Errorf("failed to advertise %s: %w", r.topics.ScriptTopic, err)
	}
	err := t.Subscribe(r.topics.ScriptResultTopic, r.topics.ScriptResultType, func(msg json.RawMessage) {
		if released.Load() {
			return
		}
		if r.onResult != nil {
			r.onResult(msg)
		}
	})
	if err != nil {
		released.Store(true)
		_ = t.Unadvertise(r.topics.GripperTopic)
		_ = t.Unadvertise(r.topics.ScriptTopic)
		return nil, fmt.Errorf("failed to subscribe %s: %w", r.topics.ScriptResultTopic, err)
	}

	return cs, nil
}

// Unbind releases cs. Only the first call does anything.
func (r *Registry) Unbind(cs *ChannelSet) {
	if cs.release() {
		r.cleanup(cs)
	}
}

// release flips the shared flag and reports whether this call did it.
func (cs *ChannelSet) release() bool {
	return cs != nil && !cs.released.Swap(true)
}

// cleanup is best effort since the transport is usually already gone.
func (r *Registry) cleanup(cs *ChannelSet) {
	if err := cs.transport.Unsubscribe(cs.resultTopic); err != nil {
		slog.Debug("Error unsubscribing on unbind", "topic", cs.resultTopic, "error", err)
	}
	if err := cs.transport.Unadvertise(cs.Gripper.name); err != nil {
		slog.Debug("Error unadvertising on unbind", "topic", cs.Gripper.name, "error", err)
	}
	if err := cs.transport.Unadvertise(cs.Script.name); err != nil {
		slog.Debug("Error unadvertising on unbind", "topic", cs.Script.name, "error", err)
	}
}
