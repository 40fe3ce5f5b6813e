package socket

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame is one named event on the wire. Data always holds a JSON document
// regardless of the codec used to carry it.
type Frame struct {
	Event string
	Data  []byte
}

type Codec interface {
	Name() string
	// Binary reports whether encoded frames must travel as binary messages.
	Binary() bool
	Marshal(f Frame) ([]byte, error)
	Unmarshal(b []byte, f *Frame) error
}

func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

type jsonFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Marshal(f Frame) ([]byte, error) {
	b, err := json.Marshal(jsonFrame{Event: f.Event, Data: f.Data})
	if err != nil {
		return nil, fmt.Errorf("json marshal frame: %w", err)
	}
	return b, nil
}

func (JSONCodec) Unmarshal(b []byte, f *Frame) error {
	var v jsonFrame
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("json unmarshal frame: %w", err)
	}
	if v.Event == "" {
		return fmt.Errorf("frame without event")
	}
	f.Event = v.Event
	f.Data = []byte(v.Data)
	return nil
}

type msgpackFrame struct {
	Event string             `msgpack:"event"`
	Data  msgpack.RawMessage `msgpack:"data,omitempty"`
}

// MsgpackCodec carries the payload as a native msgpack value and converts
// it from and to JSON at the edges.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Marshal(f Frame) ([]byte, error) {
	out := msgpackFrame{Event: f.Event}
	if len(f.Data) != 0 {
		var v any
		if err := json.Unmarshal(f.Data, &v); err != nil {
			return nil, fmt.Errorf("json unmarshal frame data: %w", err)
		}
		data, err := msgpack.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("msgpack marshal frame data: %w", err)
		}
		out.Data = data
	}

	b, err := msgpack.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal frame: %w", err)
	}
	return b, nil
}

func (MsgpackCodec) Unmarshal(b []byte, f *Frame) error {
	var v msgpackFrame
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("msgpack unmarshal frame: %w", err)
	}
	if v.Event == "" {
		return fmt.Errorf("frame without event")
	}

	f.Event = v.Event
	f.Data = nil
	if len(v.Data) == 0 {
		return nil
	}

	var data any
	if err := msgpack.Unmarshal(v.Data, &data); err != nil {
		return fmt.Errorf("msgpack unmarshal frame data: %w", err)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("json marshal frame data: %w", err)
	}
	f.Data = jsonData
	return nil
}
