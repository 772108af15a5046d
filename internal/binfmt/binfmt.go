// Package binfmt encodes and decodes Pendragon program files: the header, data segment, and code
// segment that the assembler's emission pass writes and the VM host's loader reads back. All
// multi-byte fields are little-endian.
package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	MachineName = "Pendragon"

	headerMajorVersion = 1
	headerMinorVersion = 0
	headerRevision     = 0

	machineMajorVersion = 1
	machineMinorVersion = 0
	machineRevision     = 0
)

// Header carries the program file's version and naming fields, ahead of the data and code
// segments.
type Header struct {
	HeaderMajorVersion  uint8
	HeaderMinorVersion  uint8
	HeaderRevision      uint16
	MachineName         string
	MachineMajorVersion uint8
	MachineMinorVersion uint8
	MachineRevision     uint16
	ProgramName         string
}

// Program is a fully decoded (or not-yet-encoded) program file.
type Program struct {
	Header Header
	Data   []byte // data segment blob: each data block size-prefixed by its own u16 inside this blob
	Code   []byte // code segment: the raw instruction stream
}

// NewHeader builds a header for programName with the machine identity this package emits.
func NewHeader(programName string) Header {
	return Header{
		HeaderMajorVersion:  headerMajorVersion,
		HeaderMinorVersion:  headerMinorVersion,
		HeaderRevision:      headerRevision,
		MachineName:         MachineName,
		MachineMajorVersion: machineMajorVersion,
		MachineMinorVersion: machineMinorVersion,
		MachineRevision:     machineRevision,
		ProgramName:         programName,
	}
}

var (
	ErrTruncated     = fmt.Errorf("binfmt: truncated program file")
	ErrWrongMachine  = fmt.Errorf("binfmt: machine name mismatch")
	ErrHeaderVersion = fmt.Errorf("binfmt: unsupported header version")
)

// headerSize computes the header_size field: everything from header_size itself through the end
// of program_name.
func headerSize(h Header) uint16 {
	return uint16(2 + 1 + 1 + 2 + // header_size, major, minor, revision
		1 + len(h.MachineName) +
		1 + 1 + 2 +
		2 + len(h.ProgramName))
}

// Encode writes a full program file: header, data segment, code segment.
func Encode(p Program) ([]byte, error) {
	var buf bytes.Buffer

	h := p.Header
	if h.MachineName == "" {
		h.MachineName = MachineName
	}

	size := headerSize(h)

	if err := binary.Write(&buf, binary.LittleEndian, size); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, [2]uint8{h.HeaderMajorVersion, h.HeaderMinorVersion}); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, h.HeaderRevision); err != nil {
		return nil, err
	}

	if err := writeString8(&buf, h.MachineName); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, [2]uint8{h.MachineMajorVersion, h.MachineMinorVersion}); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, h.MachineRevision); err != nil {
		return nil, err
	}

	if err := writeString16(&buf, h.ProgramName); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(p.Data))); err != nil {
		return nil, err
	}

	if _, err := buf.Write(p.Data); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(p.Code))); err != nil {
		return nil, err
	}

	if _, err := buf.Write(p.Code); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a full program file and validates the machine identity and header version.
func Decode(b []byte) (Program, error) {
	r := bytes.NewReader(b)

	var size uint16
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return Program{}, fmt.Errorf("%w: header_size: %w", ErrTruncated, err)
	}

	var h Header

	if err := binary.Read(r, binary.LittleEndian, &h.HeaderMajorVersion); err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.HeaderMinorVersion); err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	if h.HeaderMajorVersion != headerMajorVersion {
		return Program{}, fmt.Errorf("%w: got %d.%d", ErrHeaderVersion, h.HeaderMajorVersion, h.HeaderMinorVersion)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.HeaderRevision); err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	name, err := readString8(r)
	if err != nil {
		return Program{}, fmt.Errorf("%w: machine_name: %w", ErrTruncated, err)
	}

	h.MachineName = name

	if h.MachineName != MachineName {
		return Program{}, fmt.Errorf("%w: got %q", ErrWrongMachine, h.MachineName)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.MachineMajorVersion); err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.MachineMinorVersion); err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	if err := binary.Read(r, binary.LittleEndian, &h.MachineRevision); err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	progName, err := readString16(r)
	if err != nil {
		return Program{}, fmt.Errorf("%w: program_name: %w", ErrTruncated, err)
	}

	h.ProgramName = progName

	var dataLen uint32
	if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
		return Program{}, fmt.Errorf("%w: data_segment_bytes: %w", ErrTruncated, err)
	}

	data := make([]byte, dataLen)
	if _, err := readFull(r, data); err != nil {
		return Program{}, fmt.Errorf("%w: data segment: %w", ErrTruncated, err)
	}

	var codeLen uint32
	if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
		return Program{}, fmt.Errorf("%w: code_segment_bytes: %w", ErrTruncated, err)
	}

	code := make([]byte, codeLen)
	if _, err := readFull(r, code); err != nil {
		return Program{}, fmt.Errorf("%w: code segment: %w", ErrTruncated, err)
	}

	return Program{Header: h, Data: data, Code: code}, nil
}

func writeString8(buf *bytes.Buffer, s string) error {
	if len(s) > 0xff {
		return fmt.Errorf("binfmt: string too long for u8 length prefix: %d", len(s))
	}

	if err := buf.WriteByte(byte(len(s))); err != nil {
		return err
	}

	_, err := buf.WriteString(s)

	return err
}

func writeString16(buf *bytes.Buffer, s string) error {
	if len(s) > 0xffff {
		return fmt.Errorf("binfmt: string too long for u16 length prefix: %d", len(s))
	}

	if err := binary.Write(buf, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}

	_, err := buf.WriteString(s)

	return err
}

func readString8(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}

	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return "", err
	}

	return string(buf), nil
}

func readString16(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}

	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return "", err
	}

	return string(buf), nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	n, err := r.Read(buf)
	if err != nil {
		return n, err
	}

	if n != len(buf) {
		return n, fmt.Errorf("short read: got %d, want %d", n, len(buf))
	}

	return n, nil
}
