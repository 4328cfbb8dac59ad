package iso9660_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660"
)

func openFixture(t *testing.T, image []byte, sectors uint32, cfg iso9660.Config) *iso9660.Decoder {
	t.Helper()
	bs := iso9660.NewBlockSource(bytes.NewReader(image), sectors)
	dec, err := iso9660.Open(bs, cfg)
	require.NoError(t, err)
	return dec
}

func TestDecoderPlainListingAndRead(t *testing.T) {
	root := isofixture.Dir("",
		isofixture.File("HELLO.TXT", []byte("hello, world")),
		isofixture.Dir("SUBDIR", isofixture.File("NESTED.TXT", []byte("nested"))),
	)
	image, sectors := isofixture.Build(root, isofixture.Options{VolumeIdentifier: "PLAIN"})

	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())

	r, err := dec.Root()
	require.NoError(t, err)
	assert.True(t, r.IsDir())

	entries, err := dec.ReadDir(r)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := map[string]*iso9660.Entry{}
	for i := range entries {
		names[entries[i].Name] = &entries[i]
	}

	file, ok := names["HELLO.TXT"]
	require.True(t, ok)
	assert.False(t, file.IsDir())
	assert.EqualValues(t, len("hello, world"), file.Metadata.Size)

	sub, ok := names["SUBDIR"]
	require.True(t, ok)
	assert.True(t, sub.IsDir())

	rc, err := dec.OpenFile(file)
	require.NoError(t, err)
	buf := make([]byte, file.Metadata.Size)
	n, err := rc.ReadAt(buf, 0)
	assert.True(t, err == nil || err == io.EOF)
	assert.Equal(t, "hello, world", string(buf[:n]))

	nested, err := dec.Resolve("/SUBDIR/NESTED.TXT")
	require.NoError(t, err)
	assert.Equal(t, "NESTED.TXT", nested.Name)
}

func TestDecoderVersionSuffixStripped(t *testing.T) {
	root := isofixture.Dir("", isofixture.File("HELLO.TXT;1", []byte("x")))
	image, sectors := isofixture.Build(root, isofixture.Options{VolumeIdentifier: "VERS"})

	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())
	r, err := dec.Root()
	require.NoError(t, err)

	entries, err := dec.ReadDir(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "HELLO.TXT", entries[0].Name)
}

func TestDecoderJolietNamespace(t *testing.T) {
	lower := isofixture.File("LOWER.TXT", []byte("x"))
	lower.JolietName = "lowercase name.txt"
	root := isofixture.Dir("", lower)
	image, sectors := isofixture.Build(root, isofixture.Options{Joliet: true, VolumeIdentifier: "JOLIET"})

	cfg := iso9660.DefaultConfig()
	cfg.PreferNamespace = iso9660.NamespaceJoliet
	dec := openFixture(t, image, sectors, cfg)

	r, err := dec.Root()
	require.NoError(t, err)
	entries, err := dec.ReadDir(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lowercase name.txt", entries[0].Name)
}

func TestDecoderRockRidgeMetadataAndSymlink(t *testing.T) {
	modTime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	dataNode := isofixture.File("DATA.BIN", []byte("abcdef"))
	dataNode.Mode = 0100640
	dataNode.Uid = 1001
	dataNode.Gid = 1002
	dataNode.ModTime = modTime
	root := isofixture.Dir("", dataNode, isofixture.SymlinkNode("LINK", "/DATA.BIN"))
	image, sectors := isofixture.Build(root, isofixture.Options{RockRidge: true, VolumeIdentifier: "RRIP"})

	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())
	r, err := dec.Root()
	require.NoError(t, err)

	entries, err := dec.ReadDir(r)
	require.NoError(t, err)

	var data, link *iso9660.Entry
	for i := range entries {
		switch entries[i].Name {
		case "DATA.BIN":
			data = &entries[i]
		case "LINK":
			link = &entries[i]
		}
	}
	require.NotNil(t, data)
	require.NotNil(t, link)

	assert.EqualValues(t, 1001, data.Metadata.Uid)
	assert.EqualValues(t, 1002, data.Metadata.Gid)
	assert.Equal(t, modTime, data.Metadata.ModTime.UTC())

	assert.True(t, link.IsSymlink())
	target, err := dec.ReadLink(link)
	require.NoError(t, err)
	assert.Equal(t, "/DATA.BIN", target)
}

func TestDecoderWalkVisitsEveryEntry(t *testing.T) {
	root := isofixture.Dir("",
		isofixture.File("A.TXT", []byte("a")),
		isofixture.Dir("D", isofixture.File("B.TXT", []byte("b"))),
	)
	image, sectors := isofixture.Build(root, isofixture.Options{VolumeIdentifier: "WALK"})

	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())
	r, err := dec.Root()
	require.NoError(t, err)

	var visited []string
	err = dec.Walk(r, func(path string, entry *iso9660.Entry) error {
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, visited, "/")
	assert.Contains(t, visited, "/A.TXT")
	assert.Contains(t, visited, "/D")
	assert.Contains(t, visited, "/D/B.TXT")
}

func TestDecoderLookupNotFound(t *testing.T) {
	root := isofixture.Dir("", isofixture.File("A.TXT", []byte("a")))
	image, sectors := isofixture.Build(root, isofixture.Options{VolumeIdentifier: "NF"})

	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())
	_, err := dec.Resolve("/MISSING.TXT")
	assert.ErrorIs(t, err, iso9660.ErrNotFound)
}

func TestDecoderEmptyDirectory(t *testing.T) {
	root := isofixture.Dir("", isofixture.Dir("EMPTY"))
	image, sectors := isofixture.Build(root, isofixture.Options{VolumeIdentifier: "EMPTYDIR"})

	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())
	entry, err := dec.Resolve("/EMPTY")
	require.NoError(t, err)
	entries, err := dec.ReadDir(entry)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
