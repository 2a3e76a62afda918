//
// corvid - a UCI chess engine in Go
//
// MIT License
//
// Copyright (c) 2024 The Corvid Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package nnue

import (
	"encoding/binary"
	"fmt"
	"os"
)

// weight file format constants.
const (
	magicNumber uint32 = 0x43564e31 // "CVN1" - corvid network, version 1
	fileVersion uint32 = 1
)

// fileHeader is the fixed-size header written ahead of the raw weight
// arrays in a .nnue weights file.
type fileHeader struct {
	Magic       uint32
	Version     uint32
	FeatureSize uint32
	L1Size      uint32
}

// LoadWeights reads a previously trained network from filename.
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("nnue: failed to open weights file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var header fileHeader
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("nnue: failed to read header: %w", err)
	}
	if header.Magic != magicNumber {
		return fmt.Errorf("nnue: invalid magic number: expected %x, got %x", magicNumber, header.Magic)
	}
	if header.Version != fileVersion {
		return fmt.Errorf("nnue: unsupported version: expected %d, got %d", fileVersion, header.Version)
	}
	if header.FeatureSize != FeatureSize {
		return fmt.Errorf("nnue: feature size mismatch: expected %d, got %d", FeatureSize, header.FeatureSize)
	}
	if header.L1Size != L1Size {
		return fmt.Errorf("nnue: hidden layer size mismatch: expected %d, got %d", L1Size, header.L1Size)
	}

	for i := 0; i < FeatureSize; i++ {
		if err := binary.Read(f, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return fmt.Errorf("nnue: failed to read feature weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(f, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("nnue: failed to read feature bias: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("nnue: failed to read output weights: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: failed to read output bias: %w", err)
	}

	log.Info(out.Sprintf("NNUE weights loaded from %s (%d features, %d hidden units)", filename, FeatureSize, L1Size))
	return nil
}

// SaveWeights writes the network to filename in the format LoadWeights
// understands.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("nnue: failed to create weights file: %w", err)
	}
	defer func() { _ = f.Close() }()

	header := fileHeader{
		Magic:       magicNumber,
		Version:     fileVersion,
		FeatureSize: FeatureSize,
		L1Size:      L1Size,
	}
	if err := binary.Write(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("nnue: failed to write header: %w", err)
	}
	for i := 0; i < FeatureSize; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return fmt.Errorf("nnue: failed to write feature weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("nnue: failed to write feature bias: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("nnue: failed to write output weights: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: failed to write output bias: %w", err)
	}
	return nil
}
