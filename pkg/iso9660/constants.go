// Copyright © 2019 NVIDIA Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package iso9660

// LogicalBlockSize is the fixed sector size mandated by ECMA-119. Volumes
// declaring any other logical block size are rejected.
const LogicalBlockSize = 2048

// LogicalBlockAddress is a 0-based sector index from the start of the image.
type LogicalBlockAddress uint32

// FirstVolumeDescriptorLBA is where the Volume Descriptor Set always begins.
const FirstVolumeDescriptorLBA LogicalBlockAddress = 16

// MaxVolumeDescriptors bounds the descriptor scan so a missing Terminator
// can't force an unbounded read.
const MaxVolumeDescriptors = 128

const CD001 = "CD001"

// FileFlag holds the bit flags of a DirectoryRecord.
type FileFlag byte

const (
	FileFlagHidden FileFlag = 1 << iota
	FileFlagDir
	FileFlagAssociated
	FileFlagExtendedFormatInfo
	FileFlagExtendedPermissions
	FileFlagReserved1
	FileFlagReserved2
	// FileFlagNonTerminal marks a record that is not the final extent of
	// its file; more records with the same identifier follow immediately.
	FileFlagNonTerminal
)
