package isofixture

import (
	"encoding/binary"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
)

const (
	fileFlagDir         = 1 << 1
	fileFlagNonTerminal = 1 << 7
)

// Node is one file, directory, or symlink in a fixture tree. Construct
// trees with File/Dir/SymlinkNode and Build them into an image.
type Node struct {
	Name       string
	JolietName string // defaults to Name when empty
	IsDir      bool
	Data       []byte
	Symlink    string
	Children   []*Node

	Mode    uint32 // raw POSIX st_mode bits; 0 picks a default for the node's kind
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	ModTime time.Time

	// NoRockRidge opts this node's own directory record out of PX/NM/TF/SL
	// even when the tree-wide Options.RockRidge is set, for tests that need
	// one plain ISO 9660 record amid an otherwise Rock Ridge tree.
	NoRockRidge bool
}

// File returns a regular file node.
func File(name string, data []byte) *Node {
	return &Node{Name: name, Data: data}
}

// Dir returns a directory node with the given children.
func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, IsDir: true, Children: children}
}

// SymlinkNode returns a symlink node whose target is target.
func SymlinkNode(name, target string) *Node {
	return &Node{Name: name, Symlink: target}
}

// Options controls which namespaces Build populates.
type Options struct {
	Joliet           bool
	RockRidge        bool
	VolumeIdentifier string
}

// Build assembles a complete ISO image around root (root itself is not
// listed as a named entry; its Children become the volume's root
// directory's contents). It returns the image bytes and the image's total
// sector count.
func Build(root *Node, opts Options) ([]byte, uint32) {
	im := NewImage()
	im.Reserve(16) // system area, LBA 0-15, left blank
	pvdLBA := im.Reserve(1)
	var svdLBA uint32
	if opts.Joliet {
		svdLBA = im.Reserve(1)
	}
	termLBA := im.Reserve(1)

	fileLBA := map[*Node]uint32{}
	writeFileData(root, im, fileLBA)

	primaryLBA, primaryLength := buildTree(root, im, fileLBA, primaryIdentifier, opts.RockRidge)

	var jolietLBA, jolietLength uint32
	if opts.Joliet {
		jolietLBA, jolietLength = buildTree(root, im, fileLBA, jolietIdentifier, false)
	}

	im.WriteAt(pvdLBA, encodePVD(opts.VolumeIdentifier, im.TotalSectors(), primaryLBA, primaryLength))
	if opts.Joliet {
		im.WriteAt(svdLBA, encodeSVD(opts.VolumeIdentifier, im.TotalSectors(), jolietLBA, jolietLength))
	}
	im.WriteAt(termLBA, encodeTerminator())

	return im.Bytes(), im.TotalSectors()
}

func writeFileData(node *Node, im *Image, fileLBA map[*Node]uint32) {
	for _, child := range node.Children {
		if child.IsDir {
			writeFileData(child, im, fileLBA)
			continue
		}
		if child.Symlink != "" {
			continue
		}
		fileLBA[child] = im.AppendData(child.Data)
	}
}

func primaryIdentifier(n *Node) []byte {
	return []byte(strings.ToUpper(n.Name))
}

func jolietIdentifier(n *Node) []byte {
	name := n.JolietName
	if name == "" {
		name = n.Name
	}
	units := utf16.Encode([]rune(name))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.BigEndian.PutUint16(buf[2*i:2*i+2], u)
	}
	return buf
}

// buildTree lays out one namespace's directory tree (primary+RockRidge, or
// Joliet) and returns its root's (LBA, length). File content is shared
// across namespaces via fileLBA, computed once up front.
func buildTree(root *Node, im *Image, fileLBA map[*Node]uint32, nameOf func(*Node) []byte, rockRidge bool) (uint32, uint32) {
	dirLBA := map[*Node]uint32{}
	dirLength := map[*Node]uint32{}

	reserveDirLBAs(root, im, rockRidge, true, nameOf, dirLBA, dirLength)
	rootLBA, rootLength := dirLBA[root], dirLength[root]
	renderDirs(root, im, rootLBA, rootLength, true, rockRidge, nameOf, fileLBA, dirLBA, dirLength)

	return rootLBA, rootLength
}

func reserveDirLBAs(node *Node, im *Image, rockRidge, isRoot bool, nameOf func(*Node) []byte, dirLBA, dirLength map[*Node]uint32) {
	size := sizeOfDir(node, rockRidge, isRoot, nameOf)
	lba := im.Reserve(bytesToSectors(size))
	dirLBA[node] = lba
	dirLength[node] = size

	for _, child := range node.Children {
		if child.IsDir {
			reserveDirLBAs(child, im, rockRidge, false, nameOf, dirLBA, dirLength)
		}
	}
}

// sizeOfDir computes a directory's own extent length without needing any
// real LBA: a directory record's length depends only on its identifier and
// System Use bytes, never on the numeric value written into its Start
// field, so this can run ahead of LBA assignment.
func sizeOfDir(node *Node, rockRidge, isRoot bool, nameOf func(*Node) []byte) uint32 {
	records := [][]byte{
		EncodeDirectoryRecord(0, 0, 0, time.Time{}, fileFlagDir, 0, 0, 1, []byte{0}, dotSystemUse(isRoot, rockRidge)),
		EncodeDirectoryRecord(0, 0, 0, time.Time{}, fileFlagDir, 0, 0, 1, []byte{1}, nil),
	}
	for _, child := range node.Children {
		var dataLen uint32
		if child.IsDir {
			dataLen = sizeOfDir(child, rockRidge, false, nameOf)
		} else {
			dataLen = uint32(len(child.Data))
		}
		records = append(records, renderChildRecord(child, 0, dataLen, nameOf, rockRidge))
	}
	return uint32(len(pack(records)))
}

func renderDirs(node *Node, im *Image, parentLBA, parentLength uint32, isRoot, rockRidge bool, nameOf func(*Node) []byte, fileLBA, dirLBA, dirLength map[*Node]uint32) {
	lba, length := dirLBA[node], dirLength[node]

	records := [][]byte{
		EncodeDirectoryRecord(0, lba, length, node.ModTime, fileFlagDir, 0, 0, 1, []byte{0}, dotSystemUse(isRoot, rockRidge)),
		EncodeDirectoryRecord(0, parentLBA, parentLength, node.ModTime, fileFlagDir, 0, 0, 1, []byte{1}, nil),
	}
	for _, child := range node.Children {
		var start, dataLen uint32
		if child.IsDir {
			start, dataLen = dirLBA[child], dirLength[child]
		} else {
			start, dataLen = fileLBA[child], uint32(len(child.Data))
		}
		records = append(records, renderChildRecord(child, start, dataLen, nameOf, rockRidge))
	}
	im.WriteAt(lba, pack(records))

	for _, child := range node.Children {
		if child.IsDir {
			renderDirs(child, im, lba, length, false, rockRidge, nameOf, fileLBA, dirLBA, dirLength)
		}
	}
}

// dotSystemUse returns the System Use bytes for a directory's own "."
// record: only the root's carries SP (establishing LEN_SKP=0) and ER
// (advertising Rock Ridge), per spec.md §4.7 / the RRIP root-directory
// convention the teacher's rrip package documents.
func dotSystemUse(isRoot, rockRidge bool) []byte {
	if !isRoot || !rockRidge {
		return nil
	}
	var su []byte
	su = append(su, EncodeSP(0)...)
	su = append(su, EncodeER(rrip.ExtensionIdentifierIEEEP1282, "THE ROCK RIDGE INTERCHANGE PROTOCOL", "PLEASE CONTACT DISC PUBLISHER FOR SPECIFICATION SOURCE", 1)...)
	return su
}

func renderChildRecord(child *Node, start, dataLen uint32, nameOf func(*Node) []byte, rockRidge bool) []byte {
	var systemUse []byte
	if rockRidge && !child.NoRockRidge {
		systemUse = append(systemUse, EncodePX(posixRawMode(child), nlinkOf(child), child.Uid, child.Gid, nil)...)
		if !child.ModTime.IsZero() {
			modTime := child.ModTime
			systemUse = append(systemUse, EncodeTF(TFTimes{Modify: &modTime})...)
		}
		systemUse = append(systemUse, EncodeNM(child.Name, false)...)
		if child.Symlink != "" {
			systemUse = append(systemUse, encodeSymlinkTarget(child.Symlink)...)
		}
	}

	flags := byte(0)
	if child.IsDir {
		flags |= fileFlagDir
	}

	return EncodeDirectoryRecord(0, start, dataLen, child.ModTime, flags, 0, 0, 1, nameOf(child), systemUse)
}

func posixRawMode(n *Node) uint32 {
	if n.Mode != 0 {
		return n.Mode
	}
	switch {
	case n.Symlink != "":
		return 0120777
	case n.IsDir:
		return 0040555
	default:
		return 0100444
	}
}

func nlinkOf(n *Node) uint32 {
	if n.Nlink != 0 {
		return n.Nlink
	}
	return 1
}

// symlinkComponentFlag bit positions, matching pkg/iso9660/rrip/sl.go's
// SymlinkComponentFlag exactly.
const (
	slComponentContinue = 1 << 0
	slComponentCurrent  = 1 << 1
	slComponentParent   = 1 << 2
	slComponentRoot     = 1 << 3
)

// encodeSymlinkTarget splits a POSIX path into RRIP SL components (root
// marker, "."/".." markers, literal segments) and encodes one SL entry per
// component, chaining them with the entry-level continue bit.
func encodeSymlinkTarget(target string) []byte {
	type component struct {
		flags byte
		data  string
	}
	var comps []component
	if strings.HasPrefix(target, "/") {
		comps = append(comps, component{flags: slComponentRoot})
	}
	for _, part := range strings.Split(strings.Trim(target, "/"), "/") {
		switch part {
		case "":
			continue
		case ".":
			comps = append(comps, component{flags: slComponentCurrent})
		case "..":
			comps = append(comps, component{flags: slComponentParent})
		default:
			comps = append(comps, component{data: part})
		}
	}

	var out []byte
	for i, c := range comps {
		out = append(out, EncodeSL(c.flags, c.data, i < len(comps)-1)...)
	}
	return out
}

// EncodePVD exposes encodePVD for tests that assemble an image by hand
// (relocation fixtures the Node tree builder can't express) rather than
// through Build.
func EncodePVD(volID string, volSpaceSize, rootLBA, rootLength uint32) []byte {
	return encodePVD(volID, volSpaceSize, rootLBA, rootLength)
}

// EncodeTerminator exposes encodeTerminator for hand-assembled images.
func EncodeTerminator() []byte {
	return encodeTerminator()
}

func encodePVD(volID string, volSpaceSize, rootLBA, rootLength uint32) []byte {
	sector := make([]byte, LogicalBlockSize)
	sector[0] = 1
	copy(sector[1:6], []byte("CD001"))
	sector[6] = 1
	copy(sector[8:40], PadStrA("", 32))
	copy(sector[40:72], PadStrD(volID, 32))
	binary.LittleEndian.PutUint32(sector[80:84], volSpaceSize)
	binary.BigEndian.PutUint32(sector[84:88], volSpaceSize)
	writeBothUint16At(sector, 120, 1)
	writeBothUint16At(sector, 124, 1)
	writeBothUint16At(sector, 128, LogicalBlockSize)

	rootRec := EncodeDirectoryRecord(0, rootLBA, rootLength, time.Time{}, fileFlagDir, 0, 0, 1, []byte{0}, nil)
	copy(sector[156:], rootRec)

	copy(sector[190:318], PadStrD("", 128))
	copy(sector[318:446], PadStrA("", 128))
	copy(sector[446:574], PadStrA("", 128))
	copy(sector[574:702], PadStrA("", 128))
	copy(sector[702:740], PadStrD("", 38))
	copy(sector[740:776], PadStrD("", 36))
	copy(sector[776:813], PadStrD("", 37))

	created := EncodeDecDateTime(time.Time{})
	copy(sector[813:830], created[:])
	modified := EncodeDecDateTime(time.Time{})
	copy(sector[830:847], modified[:])
	effective := EncodeDecDateTime(time.Time{})
	copy(sector[864:881], effective[:])

	sector[881] = 1
	return sector
}

func encodeSVD(volID string, volSpaceSize, rootLBA, rootLength uint32) []byte {
	sector := make([]byte, LogicalBlockSize)
	sector[0] = 2
	copy(sector[1:6], []byte("CD001"))
	sector[6] = 1
	copy(sector[8:40], encodeJolietField("", 32))
	copy(sector[40:72], encodeJolietField(volID, 32))
	binary.LittleEndian.PutUint32(sector[80:84], volSpaceSize)
	binary.BigEndian.PutUint32(sector[84:88], volSpaceSize)
	copy(sector[88:91], []byte{0x25, 0x2f, 0x45}) // Joliet level 3
	writeBothUint16At(sector, 120, 1)
	writeBothUint16At(sector, 124, 1)
	writeBothUint16At(sector, 128, LogicalBlockSize)

	rootRec := EncodeDirectoryRecord(0, rootLBA, rootLength, time.Time{}, fileFlagDir, 0, 0, 1, []byte{0}, nil)
	copy(sector[156:], rootRec)

	sector[881] = 1
	return sector
}

func encodeTerminator() []byte {
	sector := make([]byte, LogicalBlockSize)
	sector[0] = 255
	copy(sector[1:6], []byte("CD001"))
	sector[6] = 1
	return sector
}

func writeBothUint16At(sector []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(sector[offset:offset+2], v)
	binary.BigEndian.PutUint16(sector[offset+2:offset+4], v)
}

func encodeJolietField(s string, byteLen int) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, byteLen)
	for i := 0; i < byteLen/2; i++ {
		u := uint16(0x0020)
		if i < len(units) {
			u = units[i]
		}
		binary.BigEndian.PutUint16(buf[2*i:2*i+2], u)
	}
	return buf
}
