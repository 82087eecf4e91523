package nes

import (
	"bytes"
	"errors"
	"testing"
)

func validHeader() []byte {
	return []byte{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
}

func TestLoadINES(t *testing.T) {
	tests := []struct {
		name     string
		build    func() []byte
		wantErr  bool
		wantCode int
	}{
		{
			name:     "empty",
			build:    func() []byte { return nil },
			wantErr:  true,
			wantCode: ExitHeaderReadFailed,
		},
		{
			name:     "header too short",
			build:    func() []byte { return []byte{'N', 'E', 'S', 0x1A, 0, 0} },
			wantErr:  true,
			wantCode: ExitHeaderReadFailed,
		},
		{
			name: "bad magic",
			build: func() []byte {
				h := validHeader()
				h[1] = 'O'
				return h
			},
			wantErr:  true,
			wantCode: ExitHeaderReadFailed,
		},
		{
			name: "zero PRG banks",
			build: func() []byte {
				h := validHeader()
				h[4] = 0
				return h
			},
			wantErr:  true,
			wantCode: ExitAllocFailed,
		},
		{
			name: "PRG truncated",
			build: func() []byte {
				return append(validHeader(), make([]byte, prgBankSize-1)...)
			},
			wantErr:  true,
			wantCode: ExitPRGReadFailed,
		},
		{
			name: "CHR truncated",
			build: func() []byte {
				rom := append(validHeader(), make([]byte, prgBankSize)...)
				return append(rom, make([]byte, chrBankSize-1)...)
			},
			wantErr:  true,
			wantCode: ExitCHRReadFailed,
		},
		{
			name: "well formed, horizontal mirroring",
			build: func() []byte {
				rom := append(validHeader(), make([]byte, prgBankSize)...)
				return append(rom, make([]byte, chrBankSize)...)
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadINES(bytes.NewReader(tt.build()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadINES() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if got == nil {
					t.Fatal("LoadINES() returned nil cartridge with no error")
				}
				return
			}

			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("LoadINES() error %v is not a *LoadError", err)
			}
			if loadErr.Code != tt.wantCode {
				t.Errorf("LoadINES() code = %d, want %d", loadErr.Code, tt.wantCode)
			}
		})
	}
}

func TestLoadINES_Mirroring(t *testing.T) {
	build := func(verticalBit bool) []byte {
		h := validHeader()
		if verticalBit {
			h[6] |= 0x01
		}
		rom := append(h, make([]byte, prgBankSize)...)
		return append(rom, make([]byte, chrBankSize)...)
	}

	cart, err := LoadINES(bytes.NewReader(build(false)))
	if err != nil {
		t.Fatalf("LoadINES() error = %v", err)
	}
	if cart.Mirroring != MirrorHorizontal {
		t.Errorf("Mirroring = %v, want MirrorHorizontal", cart.Mirroring)
	}

	cart, err = LoadINES(bytes.NewReader(build(true)))
	if err != nil {
		t.Fatalf("LoadINES() error = %v", err)
	}
	if cart.Mirroring != MirrorVertical {
		t.Errorf("Mirroring = %v, want MirrorVertical", cart.Mirroring)
	}
}

func TestLoadINES_CHRRAMFallback(t *testing.T) {
	h := validHeader()
	h[5] = 0 // zero CHR banks
	rom := append(h, make([]byte, prgBankSize)...)

	cart, err := LoadINES(bytes.NewReader(rom))
	if err != nil {
		t.Fatalf("LoadINES() error = %v", err)
	}
	if len(cart.CHR) != chrBankSize {
		t.Errorf("len(CHR) = %d, want %d (one bank of CHR-RAM)", len(cart.CHR), chrBankSize)
	}
}

func TestCartridge_ReadPRG_MirrorsAcrossWindow(t *testing.T) {
	h := validHeader()
	rom := append(h, make([]byte, prgBankSize)...)
	rom = append(rom, make([]byte, chrBankSize)...)
	rom[16] = 0x42 // first byte of PRG-ROM

	cart, err := LoadINES(bytes.NewReader(rom))
	if err != nil {
		t.Fatalf("LoadINES() error = %v", err)
	}

	if got := cart.ReadPRG(0x8000); got != 0x42 {
		t.Errorf("ReadPRG(0x8000) = %#02x, want 0x42", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0x42 {
		t.Errorf("ReadPRG(0xC000) = %#02x, want 0x42 (16 KiB board mirrors into upper half)", got)
	}
}
