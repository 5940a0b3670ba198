package simulation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
)

// The world actor speaks protobuf well-known types:
//
//	*timestamppb.Timestamp  run one frame at that instant
//	*structpb.Struct        settings patch, camelCase keys as in Settings
//	*emptypb.Empty          ask for a Status, answered as a *structpb.Struct

// NewTick stamps a frame request with the wall clock time t.
func NewTick(t time.Time) *timestamppb.Timestamp {
	return timestamppb.New(t)
}

// NewStatusRequest is the Ask message answered with the world status.
func NewStatusRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// NewSettingsPatch encodes every field of s as a settings patch.
func NewSettingsPatch(s behavior.Settings) (*structpb.Struct, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	patch, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to build settings patch: %w", err)
	}
	return patch, nil
}

// ApplySettingsPatch returns cur with the keys present in patch replaced.
// Unknown keys and values outside the config schema bounds are rejected and
// cur is returned unchanged.
func ApplySettingsPatch(cur behavior.Settings, patch *structpb.Struct) (behavior.Settings, error) {
	b, err := protojson.Marshal(patch)
	if err != nil {
		return cur, fmt.Errorf("failed to decode settings patch: %w", err)
	}
	next := cur
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return cur, fmt.Errorf("invalid settings patch: %w", err)
	}
	doc, err := json.Marshal(struct {
		Settings behavior.Settings `json:"settings"`
	}{next})
	if err != nil {
		return cur, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := validate(doc); err != nil {
		return cur, fmt.Errorf("invalid settings patch: %w", err)
	}
	return next, nil
}

// Status is the answer to a status request.
type Status struct {
	State  string
	Frames uint64
	Agents int
}

func (s Status) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"state":  s.State,
		"frames": float64(s.Frames),
		"agents": float64(s.Agents),
	})
}

// StatusOf decodes the answer of a status request.
func StatusOf(msg *structpb.Struct) (Status, error) {
	f := msg.GetFields()
	state, ok := f["state"]
	if !ok {
		return Status{}, fmt.Errorf("status without state: %v", msg)
	}
	return Status{
		State:  state.GetStringValue(),
		Frames: uint64(f["frames"].GetNumberValue()),
		Agents: int(f["agents"].GetNumberValue()),
	}, nil
}
