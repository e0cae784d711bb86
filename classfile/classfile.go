// Package classfile reads just enough of a JVM class file to describe the
// class for completion: its name, supertype, access flags and the
// signatures of its fields and methods. Code and other attributes are
// skipped.
package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

const Magic = 0xCAFEBABE

type AccessFlags uint16

const (
	AccPublic    AccessFlags = 0x0001
	AccPrivate   AccessFlags = 0x0002
	AccProtected AccessFlags = 0x0004
	AccStatic    AccessFlags = 0x0008
	AccFinal     AccessFlags = 0x0010
	AccInterface AccessFlags = 0x0200
	AccAbstract  AccessFlags = 0x0400
	AccSynthetic AccessFlags = 0x1000
	AccEnum      AccessFlags = 0x4000
)

func (f AccessFlags) IsPublic() bool    { return f&AccPublic != 0 }
func (f AccessFlags) IsStatic() bool    { return f&AccStatic != 0 }
func (f AccessFlags) IsInterface() bool { return f&AccInterface != 0 }
func (f AccessFlags) IsSynthetic() bool { return f&AccSynthetic != 0 }
func (f AccessFlags) IsEnum() bool      { return f&AccEnum != 0 }

// Member is a field or method.
type Member struct {
	Access     AccessFlags
	Name       string
	Descriptor string
}

// Class is the summary of a class file. Names are in internal form,
// with '/' separating packages.
type Class struct {
	Name    string
	Super   string
	Access  AccessFlags
	Fields  []Member
	Methods []Member
}

// SourceName returns the name with '.' separators.
func (c *Class) SourceName() string {
	return strings.ReplaceAll(c.Name, "/", ".")
}

// SimpleName returns the name without its package. Nested classes keep
// their '$' separated outer names.
func (c *Class) SimpleName() string {
	return c.Name[strings.LastIndexByte(c.Name, '/')+1:]
}

// Accessible reports whether m may be referenced from code outside the
// class's package. Synthetic members and constructors are excluded.
func (m Member) Accessible() bool {
	if m.Access.IsSynthetic() || strings.HasPrefix(m.Name, "<") {
		return false
	}
	return m.Access&(AccPublic|AccProtected) != 0
}

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

func (r *reader) skip(n int64) {
	if r.err != nil {
		return
	}
	_, r.err = io.CopyN(io.Discard, r.r, n)
}

// pool keeps the UTF-8 constants and the name index of each class
// constant. Everything else is skipped.
type pool struct {
	utf8    map[uint16]string
	classes map[uint16]uint16
}

func (p *pool) className(index uint16) string {
	return p.utf8[p.classes[index]]
}

func ParseBytes(b []byte) (*Class, error) {
	return Parse(bytes.NewReader(b))
}

func Parse(rd io.Reader) (*Class, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}
	r.skip(4) // minor and major version

	cp, err := readPool(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read constant pool: %w", err)
	}

	c := &Class{Access: AccessFlags(r.readU2())}
	c.Name = cp.className(r.readU2())
	if super := r.readU2(); super != 0 {
		c.Super = cp.className(super)
	}
	interfaces := r.readU2()
	r.skip(int64(interfaces) * 2)
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}

	if c.Fields, err = readMembers(r, cp); err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	if c.Methods, err = readMembers(r, cp); err != nil {
		return nil, fmt.Errorf("failed to read methods: %w", err)
	}
	return c, nil
}

func readPool(r *reader) (*pool, error) {
	count := r.readU2()
	cp := &pool{utf8: make(map[uint16]string), classes: make(map[uint16]uint16)}
	for i := uint16(1); i < count && r.err == nil; i++ {
		tag := r.readU1()
		switch tag {
		case tagUtf8:
			length := r.readU2()
			cp.utf8[i] = decodeModifiedUtf8(r.readBytes(int(length)))
		case tagClass:
			cp.classes[i] = r.readU2()
		case tagString, tagMethodType, tagModule, tagPackage:
			r.skip(2)
		case tagMethodHandle:
			r.skip(3)
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			r.skip(4)
		case tagLong, tagDouble:
			// takes two slots
			r.skip(8)
			i++
		default:
			if r.err == nil {
				return nil, fmt.Errorf("unknown constant pool tag %d at index %d", tag, i)
			}
		}
	}
	return cp, r.err
}

func readMembers(r *reader, cp *pool) ([]Member, error) {
	count := r.readU2()
	members := make([]Member, 0, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		m := Member{
			Access:     AccessFlags(r.readU2()),
			Name:       cp.utf8[r.readU2()],
			Descriptor: cp.utf8[r.readU2()],
		}
		attributes := r.readU2()
		for j := uint16(0); j < attributes && r.err == nil; j++ {
			r.skip(2)
			r.skip(int64(r.readU4()))
		}
		members = append(members, m)
	}
	return members, r.err
}

func decodeModifiedUtf8(b []byte) string {
	runes := make([]rune, 0, len(b))
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c&0x80 == 0:
			runes = append(runes, rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			runes = append(runes, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3] == 0xED {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+(r-0xD800)<<10+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, rune(c))
			i++
		}
	}
	return string(runes)
}
