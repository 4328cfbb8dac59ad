package susp

import "fmt"

// ContinuationReader fetches the bytes of a CE continuation area, given
// its start LBA (in whatever unit the caller's block source uses),
// byte offset within that LBA, and length.
type ContinuationReader func(start, offset, length uint32) ([]byte, error)

// WalkError reports a SUSP chain-walking failure. The Kind string matches
// one of the decoder's error kinds (SuspTruncated, SuspChainTooLong,
// SuspCycle); pkg/iso9660 maps it onto its own *DecodeError.
type WalkError struct {
	Kind   string
	Detail string
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

type continuationKey struct {
	start, offset, length uint32
}

// Walk iterates the System Use entries in area (already adjusted for any
// SP skip_bytes by the caller), following CE continuations up to maxHops
// times, refusing to revisit the same (start,offset,length) triple twice.
// Unknown tags are skipped using their length field. Entries are decoded
// through registry, keyed by 2-byte tag; a tag with no registered decoder
// contributes nothing to the result but does not fail the walk.
func Walk(area []byte, cont ContinuationReader, maxHops int, registry map[string]EntryDecoder) ([]SystemUseEntry, error) {
	var result []SystemUseEntry
	visited := make(map[continuationKey]struct{})
	hops := 0

	queue := [][]byte{area}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		stop, ceKey, err := walkOne(cur, registry, &result)
		if err != nil {
			return nil, err
		}
		if stop {
			// ST seen: per spec.md §4.5, ST ends the *chain*, so drop
			// any still-queued continuations.
			queue = nil
			continue
		}
		if ceKey == nil {
			continue
		}

		hops++
		if hops > maxHops {
			return nil, &WalkError{Kind: "SuspChainTooLong", Detail: fmt.Sprintf("exceeded %d hops", maxHops)}
		}

		key := continuationKey{ceKey.start, ceKey.offset, ceKey.length}
		if _, seen := visited[key]; seen {
			return nil, &WalkError{Kind: "SuspCycle", Detail: fmt.Sprintf("revisited lba=%d off=%d len=%d", key.start, key.offset, key.length)}
		}
		visited[key] = struct{}{}

		more, err := cont(ceKey.start, ceKey.offset, ceKey.length)
		if err != nil {
			return nil, err
		}
		queue = append(queue, more)
	}

	return result, nil
}

// walkOne parses entries out of one contiguous System Use area. It
// returns stop=true if an ST entry was seen, or a non-nil continuationKey
// if the area ended with (or contained) a CE entry that should be
// followed. Per spec.md §4.5 a CE does not stop parsing of the *current*
// area — only when the current area is exhausted does the walker follow
// the continuation — so CE entries are accumulated and the last one seen
// wins if more than one somehow appears (malformed, but non-fatal).
func walkOne(area []byte, registry map[string]EntryDecoder, result *[]SystemUseEntry) (stop bool, ceKey *continuationKey, err error) {
	for len(area) > 0 {
		if len(area) < 4 {
			return false, nil, &WalkError{Kind: "SuspTruncated", Detail: "entry header truncated"}
		}

		tag := string(area[0:2])
		length := int(area[2])
		version := area[3]

		if length < 4 {
			return false, nil, &WalkError{Kind: "SuspTruncated", Detail: fmt.Sprintf("entry length %d < 4", length)}
		}
		if length > len(area) {
			return false, nil, &WalkError{Kind: "SuspTruncated", Detail: fmt.Sprintf("entry length %d exceeds remaining %d", length, len(area))}
		}

		payload := area[4:length]
		area = area[length:]

		if tag == "ST" {
			return true, nil, nil
		}

		if tag == "CE" {
			k, perr := decodeCEKey(payload)
			if perr != nil {
				return false, nil, perr
			}
			ceKey = k
			continue
		}

		decode, ok := registry[tag]
		if !ok {
			continue
		}

		entry, derr := decode(payload, version)
		if derr != nil {
			return false, nil, derr
		}
		if entry != nil {
			*result = append(*result, entry)
		}
	}

	return false, ceKey, nil
}
