package wire

import (
	"github.com/google/uuid"

	"github.com/twinlife/twincall/pkg/twinerr"
)

// AttributeTag selects the wire representation of an Attribute's value,
// per spec §4.1.
type AttributeTag byte

const (
	TagVoid   AttributeTag = 0
	TagBool   AttributeTag = 1
	TagLong   AttributeTag = 2
	TagString AttributeTag = 3
	TagUUID   AttributeTag = 4
	TagList   AttributeTag = 5
)

// MaxSignedAttributes is the hard cap on attribute counts when decoding a
// signature payload (spec §4.1): a larger count is always malformed.
const MaxSignedAttributes = 64

// Attribute is one name/tag/value triple in an attribute TLV list. Only
// the field matching Tag is meaningful. Image-id attributes are
// transmitted as TagUUID (spec §4.1).
type Attribute struct {
	Name string
	Tag  AttributeTag
	Bool bool
	Long int64
	Str  string
	UUID uuid.UUID
	List []Attribute
}

// Void returns a TagVoid attribute named name.
func Void(name string) Attribute { return Attribute{Name: name, Tag: TagVoid} }

// BoolAttr returns a TagBool attribute.
func BoolAttr(name string, v bool) Attribute { return Attribute{Name: name, Tag: TagBool, Bool: v} }

// LongAttr returns a TagLong attribute.
func LongAttr(name string, v int64) Attribute { return Attribute{Name: name, Tag: TagLong, Long: v} }

// StringAttr returns a TagString attribute.
func StringAttr(name, v string) Attribute { return Attribute{Name: name, Tag: TagString, Str: v} }

// UUIDAttr returns a TagUUID attribute (used for image-id attributes).
func UUIDAttr(name string, v uuid.UUID) Attribute { return Attribute{Name: name, Tag: TagUUID, UUID: v} }

// ListAttr returns a TagList attribute wrapping a nested attribute list.
func ListAttr(name string, v []Attribute) Attribute { return Attribute{Name: name, Tag: TagList, List: v} }

// WriteAttributes emits an int count followed by each attribute's
// name/tag/value, per spec §4.1.
func (wr *Writer) WriteAttributes(attrs []Attribute) error {
	if err := wr.PutInt32(int32(len(attrs))); err != nil {
		return err
	}
	for _, a := range attrs {
		if err := wr.writeAttribute(a); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) writeAttribute(a Attribute) error {
	if err := wr.PutString(a.Name); err != nil {
		return err
	}
	if _, err := wr.w.Write([]byte{byte(a.Tag)}); err != nil {
		return err
	}
	switch a.Tag {
	case TagVoid:
		return nil
	case TagBool:
		return wr.PutBool(a.Bool)
	case TagLong:
		return wr.PutInt64(a.Long)
	case TagString:
		return wr.PutString(a.Str)
	case TagUUID:
		return wr.PutUUID(a.UUID)
	case TagList:
		return wr.WriteAttributes(a.List)
	default:
		return twinerr.New(twinerr.BAD_FORMAT)
	}
}

// ReadAttributes reads an attribute list with no count cap, for ordinary
// (non-signature) wire packets.
func (rd *Reader) ReadAttributes() ([]Attribute, error) {
	return rd.readAttributes(-1)
}

// ReadSignedAttributes reads an attribute list enforcing the
// MaxSignedAttributes cap required when parsing signature payloads (spec
// §4.1); a larger count is rejected as BAD_SIGNATURE_FORMAT before any
// element is decoded.
func (rd *Reader) ReadSignedAttributes() ([]Attribute, error) {
	return rd.readAttributes(MaxSignedAttributes)
}

func (rd *Reader) readAttributes(cap int) ([]Attribute, error) {
	count, err := rd.GetInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, twinerr.New(twinerr.BAD_FORMAT)
	}
	if cap >= 0 && int(count) > cap {
		return nil, twinerr.New(twinerr.BAD_SIGNATURE_FORMAT)
	}
	attrs := make([]Attribute, 0, count)
	for i := int32(0); i < count; i++ {
		a, err := rd.readAttribute(cap)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func (rd *Reader) readAttribute(cap int) (Attribute, error) {
	name, err := rd.GetString()
	if err != nil {
		return Attribute{}, err
	}
	tagByte, err := rd.r.ReadByte()
	if err != nil {
		return Attribute{}, wrapBadFormat(err)
	}
	a := Attribute{Name: name, Tag: AttributeTag(tagByte)}
	switch a.Tag {
	case TagVoid:
	case TagBool:
		if a.Bool, err = rd.GetBool(); err != nil {
			return Attribute{}, err
		}
	case TagLong:
		if a.Long, err = rd.GetInt64(); err != nil {
			return Attribute{}, err
		}
	case TagString:
		if a.Str, err = rd.GetString(); err != nil {
			return Attribute{}, err
		}
	case TagUUID:
		if a.UUID, err = rd.GetUUID(); err != nil {
			return Attribute{}, err
		}
	case TagList:
		if a.List, err = rd.readAttributes(cap); err != nil {
			return Attribute{}, err
		}
	default:
		return Attribute{}, twinerr.New(twinerr.BAD_FORMAT)
	}
	return a, nil
}

// Find returns the first attribute named name in attrs.
func Find(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}
