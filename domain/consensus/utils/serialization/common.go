package serialization

import (
	"encoding/binary"
	"io"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// MaxVarBytesLength bounds any length-prefixed byte field read from a data source.
const MaxVarBytesLength = 1 << 24

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

var errMalformed = errors.New("errMalformed")

// WriteElement writes the little endian representation of element to w.
func WriteElement(w io.Writer, element interface{}) error {
	var scratch [8]byte
	switch e := element.(type) {
	case uint8:
		scratch[0] = e
		return write(w, scratch[:1])

	case bool:
		if e {
			scratch[0] = 0x01
		}
		return write(w, scratch[:1])

	case uint16:
		binary.LittleEndian.PutUint16(scratch[:2], e)
		return write(w, scratch[:2])

	case uint32:
		binary.LittleEndian.PutUint32(scratch[:4], e)
		return write(w, scratch[:4])

	case int32:
		binary.LittleEndian.PutUint32(scratch[:4], uint32(e))
		return write(w, scratch[:4])

	case uint64:
		binary.LittleEndian.PutUint64(scratch[:], e)
		return write(w, scratch[:])

	case int64:
		binary.LittleEndian.PutUint64(scratch[:], uint64(e))
		return write(w, scratch[:])

	case externalapi.DomainHash:
		return write(w, e.ByteSlice())

	case *externalapi.DomainHash:
		return write(w, e.ByteSlice())
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

func write(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return errors.WithStack(err)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to writeElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteVarBytes writes a uint64 length followed by the bytes themselves
func WriteVarBytes(w io.Writer, b []byte) error {
	err := WriteElement(w, uint64(len(b)))
	if err != nil {
		return err
	}
	return write(w, b)
}

// ReadElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func ReadElement(r io.Reader, element interface{}) error {
	var scratch [8]byte
	switch e := element.(type) {
	case *uint8:
		if err := read(r, scratch[:1]); err != nil {
			return err
		}
		*e = scratch[0]
		return nil

	case *bool:
		if err := read(r, scratch[:1]); err != nil {
			return err
		}
		switch scratch[0] {
		case 0x00:
			*e = false
		case 0x01:
			*e = true
		default:
			return errors.Wrapf(errMalformed, "in order to keep serialization canonical, true has to"+
				" always be 0x01")
		}
		return nil

	case *uint16:
		if err := read(r, scratch[:2]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint16(scratch[:2])
		return nil

	case *uint32:
		if err := read(r, scratch[:4]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint32(scratch[:4])
		return nil

	case *int32:
		if err := read(r, scratch[:4]); err != nil {
			return err
		}
		*e = int32(binary.LittleEndian.Uint32(scratch[:4]))
		return nil

	case *uint64:
		if err := read(r, scratch[:]); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint64(scratch[:])
		return nil

	case *int64:
		if err := read(r, scratch[:]); err != nil {
			return err
		}
		*e = int64(binary.LittleEndian.Uint64(scratch[:]))
		return nil

	case *externalapi.DomainHash:
		var hashArray [externalapi.DomainHashSize]byte
		if err := read(r, hashArray[:]); err != nil {
			return err
		}
		*e = *externalapi.NewDomainHashFromByteArray(&hashArray)
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

func read(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	return errors.WithStack(err)
}

// ReadElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarBytes reads a length-prefixed byte slice written by WriteVarBytes
func ReadVarBytes(r io.Reader) ([]byte, error) {
	var length uint64
	err := ReadElement(r, &length)
	if err != nil {
		return nil, err
	}
	if length > MaxVarBytesLength {
		return nil, errors.Wrapf(errMalformed, "variable length field of %d bytes exceeds the maximum of %d",
			length, MaxVarBytesLength)
	}
	b := make([]byte, length)
	err = read(r, b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// IsMalformedError returns whether the error indicates a malformed data source
func IsMalformedError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) || errors.Is(err, errMalformed)
}
