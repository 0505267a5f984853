package dom

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/pjslang/pjs"
)

// Fetcher retrieves the resources named by "hget", "fs" and "vocab".
type Fetcher interface {
	Fetch(ctx context.Context, location string) (body []byte, contentType string, err error)
}

// HTTPFetcher fetches http and https URLs with Client, and anything else as a
// local file path.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (hf HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	if u, err := url.Parse(location); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		body, err := os.ReadFile(location)
		return body, "", errors.Wrap(err, "fetch")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "fetch")
	}
	client := hf.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "fetch")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Errorf("fetch %v: %v", location, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetch %v", location)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// FetchWords installs the words that load remote data and code:
//
//	url hget    pushes the body, decoded when it is JSON
//	url fs      runs the fetched script as a task
//	url vocab   runs the fetched script in place, with an empty stack
func FetchWords(f Fetcher) pjs.Vocabulary {
	fw := &fetchWords{Fetcher: f, vocabs: make(map[string][]pjs.Term)}
	return func(dict *pjs.Dictionary) {
		dict.Define("hget", fw.hget)
		dict.Define("fs", fw.fs)
		dict.Define("vocab", fw.vocab)
	}
}

type fetchWords struct {
	Fetcher

	mu     sync.Mutex
	vocabs map[string][]pjs.Term
}

func (fw *fetchWords) hget(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	location, err := popText("hget", &st)
	if err != nil {
		return st, err
	}
	body, contentType, err := fw.Fetch(ctx, location)
	if err != nil {
		return st, err
	}
	if mediaType, _, _ := mime.ParseMediaType(contentType); mediaType == "application/json" {
		var data interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			return st, errors.Wrapf(err, "hget %v", location)
		}
		return st.Push(FromJSON(data)), nil
	}
	return st.Push(pjs.Text(body)), nil
}

func (fw *fetchWords) script(ctx context.Context, op, location string) ([]pjs.Term, error) {
	body, _, err := fw.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	terms, err := pjs.Compile(string(body))
	if err != nil {
		return nil, errors.Wrapf(err, "%v %v", op, location)
	}
	return terms, nil
}

// fs fetches inside the spawned task, so the spawner never waits on the
// network.
func (fw *fetchWords) fs(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	location, err := popText("fs", &st)
	if err != nil {
		return st, err
	}
	load := pjs.Func(func(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
		terms, err := fw.script(ctx, "fs", location)
		if err != nil {
			return st, err
		}
		st.Cont = st.Cont.Push(pjs.ProgramFrame(pjs.NewProgram(terms)))
		return st, nil
	})
	prog := pjs.NewProgram([]pjs.Term{pjs.Word{Name: "!"}})
	vm.Spawn(ctx, st.Selection, prog, st.Data.Push(load), st.Dict)
	return st, nil
}

// vocab caches each script by location; reruns only re-evaluate it.
func (fw *fetchWords) vocab(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
	location, err := popText("vocab", &st)
	if err != nil {
		return st, err
	}
	fw.mu.Lock()
	terms, ok := fw.vocabs[location]
	fw.mu.Unlock()
	if !ok {
		if terms, err = fw.script(ctx, "vocab", location); err != nil {
			return st, err
		}
		fw.mu.Lock()
		fw.vocabs[location] = terms
		fw.mu.Unlock()
	}

	saved := st.Data
	st.Cont = st.Cont.
		Push(pjs.NativeFrame("vocab", func(ctx context.Context, vm *pjs.VM, st pjs.State) (pjs.State, error) {
			st.Data = saved
			return st, nil
		})).
		Push(pjs.ProgramFrame(pjs.NewProgram(terms)))
	st.Data = nil
	return st, nil
}

// FromJSON converts decoded JSON into values; null becomes false.
func FromJSON(data interface{}) pjs.Value {
	switch v := data.(type) {
	case float64:
		return pjs.Number(v)
	case string:
		return pjs.Text(v)
	case bool:
		return pjs.Bool(v)
	case []interface{}:
		arr := make(pjs.Array, len(v))
		for i, item := range v {
			arr[i] = FromJSON(item)
		}
		return arr
	case map[string]interface{}:
		rec := make(pjs.Record, len(v))
		for k, item := range v {
			rec[k] = FromJSON(item)
		}
		return rec
	}
	return pjs.Bool(false)
}
