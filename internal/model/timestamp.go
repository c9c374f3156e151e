package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Timestamp 是创建时间。存储端可能给出原生的 datetime / timestamp，
// 也可能是序列化后的字符串或毫秒数，解码后统一成一个 time.Time。
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func Now() Timestamp {
	return Timestamp{Time: time.Now()}
}

func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(primitive.NewDateTimeFromTime(t.Time))
}

func (t *Timestamp) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: typ, Value: data}
	switch typ {
	case bsontype.DateTime:
		t.Time = primitive.DateTime(raw.DateTime()).Time()
	case bsontype.Timestamp:
		sec, _ := raw.Timestamp()
		t.Time = time.Unix(int64(sec), 0)
	case bsontype.String:
		parsed, err := parseTimeString(raw.StringValue())
		if err != nil {
			return err
		}
		t.Time = parsed
	case bsontype.Int64:
		t.Time = time.UnixMilli(raw.Int64())
	case bsontype.Int32:
		t.Time = time.UnixMilli(int64(raw.Int32()))
	case bsontype.Double:
		t.Time = time.UnixMilli(int64(raw.Double()))
	case bsontype.EmbeddedDocument:
		var doc struct {
			Seconds     int64 `bson:"seconds"`
			Nanoseconds int64 `bson:"nanoseconds"`
		}
		if err := raw.Unmarshal(&doc); err != nil {
			return err
		}
		t.Time = time.Unix(doc.Seconds, doc.Nanoseconds)
	case bsontype.Null, bsontype.Undefined:
		t.Time = time.Time{}
	default:
		return fmt.Errorf("cannot decode %s into Timestamp", typ)
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON 接受 RFC3339 字符串、毫秒数，以及 {"seconds":..,"nanoseconds":..} 形式的原生时间戳对象
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseTimeString(s)
		if err != nil {
			return err
		}
		t.Time = parsed
	case '{':
		var obj struct {
			Seconds     int64 `json:"seconds"`
			Nanoseconds int64 `json:"nanoseconds"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		t.Time = time.Unix(obj.Seconds, obj.Nanoseconds)
	default:
		ms, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		t.Time = time.UnixMilli(int64(ms))
	}
	return nil
}

func parseTimeString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time format %q", s)
}
