package gid

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	ConnectionTag = "cxn"
	CaptureTag    = "cap"
)

// ConnectionID identifies one observed connection: a TCP stream or a UDP
// address pair. A fresh UUID rather than a hash of the address tuple, so two
// uses of the same ports at different times stay distinguishable.
type ConnectionID struct {
	baseID
}

func (ConnectionID) GetType() string {
	return ConnectionTag
}

func (id ConnectionID) String() string {
	return String(id)
}

func NewConnectionID(id uuid.UUID) ConnectionID {
	return ConnectionID{baseID(id)}
}

func GenerateConnectionID() ConnectionID {
	return NewConnectionID(uuid.New())
}

func (id ConnectionID) MarshalText() ([]byte, error) {
	return toText(id)
}

func (id *ConnectionID) UnmarshalText(data []byte) error {
	tag, uniquePart, err := parseIDParts(string(data))
	if err != nil {
		return err
	}
	if tag != ConnectionTag {
		return errors.Errorf("not a connection ID: tag %q", tag)
	}
	*id = NewConnectionID(uniquePart)
	return nil
}

// CaptureID identifies one run of a traffic parser.
type CaptureID struct {
	baseID
}

func (CaptureID) GetType() string {
	return CaptureTag
}

func (id CaptureID) String() string {
	return String(id)
}

func NewCaptureID(id uuid.UUID) CaptureID {
	return CaptureID{baseID(id)}
}

func GenerateCaptureID() CaptureID {
	return NewCaptureID(uuid.New())
}
