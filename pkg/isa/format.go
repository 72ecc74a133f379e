package isa

// Magic is the 4-byte little-endian magic identifier at offset 0 of every
// AKM v2 artifact, spelling "AKM2" when read as bytes.
const Magic uint32 = 0x324D4B41

// FormatVersion is the fixed format_version field value at offset 4.
const FormatVersion uint16 = 2

// HeaderSize is the fixed, byte-exact size of the AKM v2 header.
const HeaderSize = 512

// Header flag bits (offset 6, 2 bytes).
const (
	FlagDebug    uint16 = 1 << 0
	FlagNative   uint16 = 1 << 1
	FlagRequired uint16 = 1 << 2
	FlagAutoload uint16 = 1 << 3
)

// DefaultAPIVersion is the packed u16 "major.minor" default for offset 96
// (0x0200 = "2.0").
const DefaultAPIVersion uint16 = 0x0200

// DefaultKernelMinVersion is the default u32 at offset 100.
const DefaultKernelMinVersion uint32 = 0x00080000

// Field length limits from the module descriptor.
const (
	MaxNameLen         = 31
	MaxVersionLen      = 15
	MaxAuthorLen       = 31
	MaxDependencyLen   = 31
	MaxDependencyCount = 4
)

// DefaultVersion is the module version used when the source does not supply
// one (≤15 bytes).
const DefaultVersion = "1.0.0"

// Header field byte offsets. Every offset here is part of the on-disk
// contract — never renumber.
const (
	OffMagic             = 0
	OffFormatVersion     = 4
	OffFlags             = 6
	OffHeaderSize        = 8
	OffTotalSize         = 12
	OffName              = 16
	OffVersion           = 48
	OffAuthor            = 64
	OffAPIVersion        = 96
	OffReserved98        = 98
	OffKernelMinVersion  = 100
	OffKernelMaxVersion  = 104
	OffCapabilities      = 108
	OffReserved112       = 112
	OffCodeOffset        = 116
	OffCodeSize          = 120
	OffDataOffset        = 124
	OffDataSize          = 128
	OffRodataOffset      = 132
	OffRodataSize        = 136
	OffBssSize           = 140
	OffReserved144       = 144
	OffInitOffset        = 164
	OffCleanupOffset     = 168
	OffReserved172       = 172
	OffSymtabOffset      = 180
	OffSymtabSize        = 184
	OffStrtabOffset      = 188
	OffStrtabSize        = 192
	OffReserved196       = 196
	OffDepCount          = 212
	OffReserved213       = 213
	OffDependencies      = 216
	OffSecurityLevel     = 344
	OffSignatureType     = 345
	OffReserved346       = 346
	OffHeaderChecksum    = 348
	OffContentChecksum   = 352
	OffSignature         = 356
	OffReserved420       = 420
	OffPadding           = 448
	DependencySlotLength = 32
)

// SecurityLevel is the module's declared security level (0-2).
type SecurityLevel = uint8

// Valid security levels.
const (
	SecurityLevelNone SecurityLevel = iota
	SecurityLevelBasic
	SecurityLevelStrict
)
