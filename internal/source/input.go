package source

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// AcceptedMediaType is the only resume media type the client lets through.
const AcceptedMediaType = "application/pdf"

type Kind int

const (
	LocalFile Kind = iota + 1
	RemoteReference
)

func (k Kind) String() string {
	switch k {
	case LocalFile:
		return "local_file"
	case RemoteReference:
		return "remote_reference"
	default:
		return "unknown"
	}
}

var (
	ErrUnsupportedType = errors.New("only PDF resumes are accepted")
	ErrEmptyReference  = errors.New("remote document id is required")
)

// Input is a resolved resume source. Exactly one of Data and RemoteID is set,
// and Kind tells which one.
type Input struct {
	Kind        Kind
	Data        []byte
	RemoteID    string
	DisplayName string
}

// NewLocalFile builds a local file input. Only the name is checked against the
// accepted media type; the content is left for the remote service to judge.
func NewLocalFile(name string, data []byte) (*Input, error) {
	name = strings.TrimSpace(name)
	if !IsAcceptedFile(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedType)
	}

	if data == nil {
		data = []byte{}
	}

	return &Input{
		Kind:        LocalFile,
		Data:        data,
		DisplayName: filepath.Base(name),
	}, nil
}

// NewRemoteReference builds an input that points to a document the service fetches itself.
func NewRemoteReference(id, name string) (*Input, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyReference
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}

	return &Input{
		Kind:        RemoteReference,
		RemoteID:    id,
		DisplayName: name,
	}, nil
}

// ReadLocalFile loads exactly one file from disk.
func ReadLocalFile(path string) (*Input, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("resume path is required")
	}

	if !IsAcceptedFile(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedType)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	return NewLocalFile(path, data)
}

// IsAcceptedFile reports whether the file name maps to the accepted media type.
func IsAcceptedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ext == ".pdf"
	}
	return mediaType == AcceptedMediaType
}

// Validate checks that the populated payload matches Kind.
func (i *Input) Validate() error {
	if i == nil {
		return errors.New("input is nil")
	}

	switch i.Kind {
	case LocalFile:
		if i.RemoteID != "" {
			return errors.New("local file input must not carry a remote id")
		}
		if i.Data == nil {
			return errors.New("local file input has no data")
		}
	case RemoteReference:
		if i.Data != nil {
			return errors.New("remote reference input must not carry file data")
		}
		if i.RemoteID == "" {
			return ErrEmptyReference
		}
	default:
		return fmt.Errorf("unknown input kind %d", i.Kind)
	}

	return nil
}

// Clone returns a copy that shares nothing mutable with i.
func (i *Input) Clone() *Input {
	if i == nil {
		return nil
	}
	c := *i
	if i.Data != nil {
		c.Data = make([]byte, len(i.Data))
		copy(c.Data, i.Data)
	}
	return &c
}
