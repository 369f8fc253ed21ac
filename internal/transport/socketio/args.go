package socketio

import "github.com/icidasset/ongaku-ry/internal/domain/collection"

// Socket.io event payloads arrive as map[string]interface{} with JSON number
// semantics. These helpers pull typed fields out of the first argument.

func argMap(args []any) (map[string]interface{}, bool) {
	if len(args) == 0 {
		return nil, false
	}
	m, ok := args[0].(map[string]interface{})
	return m, ok
}

func argString(args []any, key string) (string, bool) {
	m, ok := argMap(args)
	if !ok {
		return "", false
	}
	v, ok := m[key].(string)
	return v, ok
}

func argBool(args []any, key string) (bool, bool) {
	m, ok := argMap(args)
	if !ok {
		return false, false
	}
	v, ok := m[key].(bool)
	return v, ok
}

func argInt(args []any, key string) (int, bool) {
	m, ok := argMap(args)
	if !ok {
		return 0, false
	}
	v, ok := m[key].(float64)
	return int(v), ok
}

func argIntPtr(args []any, key string) *int {
	if v, ok := argInt(args, key); ok {
		return &v
	}
	return nil
}

// argPlaylistTracks reads the "tracks" field: a list of {artist, title, album}
// objects. Entries without a title are dropped.
func argPlaylistTracks(args []any) []collection.PlaylistTrack {
	m, ok := argMap(args)
	if !ok {
		return nil
	}
	raw, ok := m["tracks"].([]interface{})
	if !ok {
		return nil
	}

	refs := make([]collection.PlaylistTrack, 0, len(raw))
	for _, entry := range raw {
		em, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := em["title"].(string)
		if title == "" {
			continue
		}
		artist, _ := em["artist"].(string)
		album, _ := em["album"].(string)
		refs = append(refs, collection.PlaylistTrack{Artist: artist, Title: title, Album: album})
	}
	return refs
}
