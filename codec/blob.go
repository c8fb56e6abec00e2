package codec

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/rowmap"
)

// Values and rows are carried in msgpack as a kind tag followed by the
// payload of that kind. The format is internal: it backs sequence fields
// inside Bytes values and the cached-row encoding, both of which are
// written and read by this package only.

func marshalValues(vals []rowmap.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeArrayLen(len(vals)); err != nil {
		return nil, err
	}
	for _, v := range vals {
		if err := encodeValue(enc, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func unmarshalValues(blob []byte) ([]rowmap.Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(blob))
	return decodeValues(dec)
}

func decodeValues(dec *msgpack.Decoder) ([]rowmap.Value, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	vals := make([]rowmap.Value, n)
	for i := range vals {
		if vals[i], err = decodeValue(dec); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

func encodeValue(enc *msgpack.Encoder, v rowmap.Value) error {
	if err := enc.EncodeInt8(int8(v.Kind())); err != nil {
		return err
	}
	switch v.Kind() {
	case rowmap.KindNull:
		return nil
	case rowmap.KindBool:
		return enc.EncodeBool(v.Bool())
	case rowmap.KindInt:
		return enc.EncodeInt32(v.Int())
	case rowmap.KindBigint:
		return enc.EncodeInt64(v.Bigint())
	case rowmap.KindFloat:
		return enc.EncodeFloat32(v.Float())
	case rowmap.KindDouble:
		return enc.EncodeFloat64(v.Double())
	case rowmap.KindText:
		return enc.EncodeString(v.Text())
	case rowmap.KindBytes:
		return enc.EncodeBytes(v.Bytes())
	case rowmap.KindTime:
		return enc.EncodeTime(v.Time())
	case rowmap.KindTable:
		fields := v.Fields()
		if err := enc.EncodeArrayLen(len(fields)); err != nil {
			return err
		}
		for _, f := range fields {
			if err := enc.EncodeString(f.Name); err != nil {
				return err
			}
			if err := encodeValue(enc, f.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("codec: cannot encode kind %s", v.Kind())
}

func decodeValue(dec *msgpack.Decoder) (rowmap.Value, error) {
	tag, err := dec.DecodeInt8()
	if err != nil {
		return rowmap.Value{}, err
	}
	switch rowmap.Kind(tag) {
	case rowmap.KindNull:
		return rowmap.Null(), nil
	case rowmap.KindBool:
		b, err := dec.DecodeBool()
		return rowmap.Bool(b), err
	case rowmap.KindInt:
		i, err := dec.DecodeInt32()
		return rowmap.Int(i), err
	case rowmap.KindBigint:
		i, err := dec.DecodeInt64()
		return rowmap.Bigint(i), err
	case rowmap.KindFloat:
		f, err := dec.DecodeFloat32()
		return rowmap.Float(f), err
	case rowmap.KindDouble:
		f, err := dec.DecodeFloat64()
		return rowmap.Double(f), err
	case rowmap.KindText:
		s, err := dec.DecodeString()
		return rowmap.Text(s), err
	case rowmap.KindBytes:
		b, err := dec.DecodeBytes()
		return rowmap.Bytes(b), err
	case rowmap.KindTime:
		t, err := dec.DecodeTime()
		return rowmap.Time(t), err
	case rowmap.KindTable:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return rowmap.Value{}, err
		}
		fields := make([]rowmap.Field, n)
		for i := range fields {
			if fields[i].Name, err = dec.DecodeString(); err != nil {
				return rowmap.Value{}, err
			}
			if fields[i].Value, err = decodeValue(dec); err != nil {
				return rowmap.Value{}, err
			}
		}
		return rowmap.Table(fields...), nil
	}
	return rowmap.Value{}, fmt.Errorf("codec: unknown kind tag %d", tag)
}

// MarshalRows encodes query result rows for transport or caching.
func MarshalRows(rows []rowmap.Row) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeArrayLen(len(rows)); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := enc.EncodeArrayLen(len(r.Columns)); err != nil {
			return nil, err
		}
		for i, c := range r.Columns {
			if err := enc.EncodeString(c); err != nil {
				return nil, err
			}
			if err := encodeValue(enc, r.Values[i]); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalRows decodes rows produced by MarshalRows.
func UnmarshalRows(blob []byte) ([]rowmap.Row, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(blob))
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	rows := make([]rowmap.Row, n)
	for i := range rows {
		m, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		r := rowmap.Row{
			Columns: make([]string, m),
			Values:  make([]rowmap.Value, m),
		}
		for j := 0; j < m; j++ {
			if r.Columns[j], err = dec.DecodeString(); err != nil {
				return nil, err
			}
			if r.Values[j], err = decodeValue(dec); err != nil {
				return nil, err
			}
		}
		rows[i] = r
	}
	return rows, nil
}
