package json

import (
	"io"

	"github.com/creasty/defaults"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Encoder struct {
	*jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		Encoder: json.NewEncoder(w),
	}
}

type Decoder struct {
	*jsoniter.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		Decoder: json.NewDecoder(r),
	}
}

// DecodeWithDefaults decodes into v and then fills zero-valued fields
// carrying `default` struct tags.
func (d *Decoder) DecodeWithDefaults(v any) error {
	if err := d.Decoder.Decode(v); err != nil {
		return err
	}
	return defaults.Set(v)
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

func MarshalToString(v any) (string, error) {
	return json.MarshalToString(v)
}

func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func UnmarshalFromString(data string, v any) error {
	return json.UnmarshalFromString(data, v)
}
