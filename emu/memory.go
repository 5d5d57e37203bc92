// Package emu provides the functional backing store shared by both cores.
package emu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// WordBytes is the size of one memory word in bytes.
const WordBytes = 4

// DataBlockWords is the number of words in a data block.
const DataBlockWords = 4

// DataBlockBytes is the size of a data block in bytes.
const DataBlockBytes = DataBlockWords * WordBytes

// InstructionBlockWords is the number of words in an instruction block.
const InstructionBlockWords = 16

// MemoryConfig holds main memory sizing parameters.
type MemoryConfig struct {
	// DataWords is the number of words in the data space.
	DataWords uint64
	// InstructionWords is the number of words in the instruction space.
	InstructionWords uint64
	// InstructionBase is the first address of the instruction space.
	InstructionBase uint64
	// InitialDataWord is the value every data word holds at power-on.
	InitialDataWord int32
}

// DefaultMemoryConfig returns the memory layout of the two-core machine:
// 8 lines x 4 words x 3 of data, 640 words of instructions at 384.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		DataWords:        8 * DataBlockWords * 3,
		InstructionWords: 640,
		InstructionBase:  384,
		InitialDataWord:  1,
	}
}

// ErrAddressOutOfRange is matched by every AddressOutOfRangeError.
var ErrAddressOutOfRange = errors.New("address out of range")

// AddressOutOfRangeError reports an access outside a memory space.
// The valid range is [Low, High).
type AddressOutOfRangeError struct {
	Space   string
	Address uint64
	Low     uint64
	High    uint64
}

func (e *AddressOutOfRangeError) Error() string {
	return fmt.Sprintf("%s address %d out of range [%d, %d)",
		e.Space, e.Address, e.Low, e.High)
}

// Is reports whether target is ErrAddressOutOfRange.
func (e *AddressOutOfRangeError) Is(target error) bool {
	return target == ErrAddressOutOfRange
}

// MainMemory is the passive store behind both data caches. It holds a data
// space starting at address 0 and a separate instruction space starting at
// InstructionBase. It has no coherence awareness.
type MainMemory struct {
	config       MemoryConfig
	data         *mem.Storage
	instructions *mem.Storage
}

// NewMainMemory creates a main memory with every data word set to
// config.InitialDataWord.
func NewMainMemory(config MemoryConfig) *MainMemory {
	m := &MainMemory{
		config:       config,
		data:         mem.NewStorage(config.DataWords * WordBytes),
		instructions: mem.NewStorage(config.InstructionWords * WordBytes),
	}

	if config.InitialDataWord != 0 && config.DataWords > 0 {
		words := make([]int32, config.DataWords)
		for i := range words {
			words[i] = config.InitialDataWord
		}
		m.mustStore(m.data, 0, words)
	}

	return m
}

// Config returns the memory configuration.
func (m *MainMemory) Config() MemoryConfig {
	return m.config
}

// DataCapacity returns the size of the data space in bytes.
func (m *MainMemory) DataCapacity() uint64 {
	return m.config.DataWords * WordBytes
}

// CheckDataAddress returns an error if addr is not a valid data address.
func (m *MainMemory) CheckDataAddress(addr uint64) error {
	if addr >= m.DataCapacity() {
		return &AddressOutOfRangeError{
			Space:   "data",
			Address: addr,
			Low:     0,
			High:    m.DataCapacity(),
		}
	}
	return nil
}

// ReadDataBlock returns the block that contains addr.
func (m *MainMemory) ReadDataBlock(addr uint64) ([DataBlockWords]int32, error) {
	var block [DataBlockWords]int32

	if err := m.CheckDataAddress(addr); err != nil {
		return block, err
	}

	words, err := m.load(m.data, blockBase(addr), DataBlockWords)
	if err != nil {
		return block, fmt.Errorf("failed to read data block at %d: %w", addr, err)
	}
	copy(block[:], words)

	return block, nil
}

// WriteDataBlock overwrites the block that contains addr.
func (m *MainMemory) WriteDataBlock(addr uint64, block [DataBlockWords]int32) error {
	if err := m.CheckDataAddress(addr); err != nil {
		return err
	}

	if err := m.store(m.data, blockBase(addr), block[:]); err != nil {
		return fmt.Errorf("failed to write data block at %d: %w", addr, err)
	}

	return nil
}

// ReadDataWord returns the single data word at addr.
func (m *MainMemory) ReadDataWord(addr uint64) (int32, error) {
	if err := m.CheckDataAddress(addr); err != nil {
		return 0, err
	}

	words, err := m.load(m.data, addr/WordBytes*WordBytes, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to read data word at %d: %w", addr, err)
	}

	return words[0], nil
}

// WriteInstruction stores words into the instruction space. Each address
// unit past InstructionBase selects one word.
func (m *MainMemory) WriteInstruction(addr uint64, words []int32) error {
	low := m.config.InstructionBase
	high := low + m.config.InstructionWords

	count := uint64(len(words))
	if addr < low || addr-low > m.config.InstructionWords ||
		count > m.config.InstructionWords-(addr-low) {
		return &AddressOutOfRangeError{
			Space:   "instruction",
			Address: addr,
			Low:     low,
			High:    high,
		}
	}

	offset := (addr - low) * WordBytes
	if err := m.store(m.instructions, offset, words); err != nil {
		return fmt.Errorf("failed to write instruction at %d: %w", addr, err)
	}

	return nil
}

// ReadInstructionBlock returns the 16 words of the given instruction block.
// Block numbers are relative to InstructionBase.
func (m *MainMemory) ReadInstructionBlock(
	blockNumber uint64,
) ([InstructionBlockWords]int32, error) {
	var block [InstructionBlockWords]int32

	if blockNumber >= m.config.InstructionWords/InstructionBlockWords {
		return block, &AddressOutOfRangeError{
			Space:   "instruction",
			Address: m.config.InstructionBase + blockNumber*InstructionBlockWords,
			Low:     m.config.InstructionBase,
			High:    m.config.InstructionBase + m.config.InstructionWords,
		}
	}

	first := blockNumber * InstructionBlockWords
	words, err := m.load(m.instructions, first*WordBytes, InstructionBlockWords)
	if err != nil {
		return block, fmt.Errorf(
			"failed to read instruction block %d: %w", blockNumber, err)
	}
	copy(block[:], words)

	return block, nil
}

func blockBase(addr uint64) uint64 {
	return addr / DataBlockBytes * DataBlockBytes
}

func (m *MainMemory) load(s *mem.Storage, offset uint64, n int) ([]int32, error) {
	raw, err := s.Read(offset, uint64(n*WordBytes))
	if err != nil {
		return nil, err
	}

	words := make([]int32, n)
	for i := range words {
		words[i] = int32(binary.LittleEndian.Uint32(raw[i*WordBytes:]))
	}

	return words, nil
}

func (m *MainMemory) store(s *mem.Storage, offset uint64, words []int32) error {
	raw := make([]byte, len(words)*WordBytes)
	for i, w := range words {
		binary.LittleEndian.PutUint32(raw[i*WordBytes:], uint32(w))
	}

	return s.Write(offset, raw)
}

func (m *MainMemory) mustStore(s *mem.Storage, offset uint64, words []int32) {
	if err := m.store(s, offset, words); err != nil {
		panic(err)
	}
}
