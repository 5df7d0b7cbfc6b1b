package transport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kelmin/ugit/plumbing"
	"golang.org/x/xerrors"
)

// ErrUnexpectedStatus is returned when the remote answers with a non-2xx
// HTTP status.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Ref is a single advertised reference: its name and the Oid it points at.
type Ref struct {
	Name string
	Oid  plumbing.Oid
}

// Refs is the result of discovering a remote's advertised references.
type Refs struct {
	// List holds every advertised ref in the order the server sent them,
	// including HEAD under its own name (see HEADRef).
	List []Ref
	// Capabilities is the capability list advertised on the first ref line.
	Capabilities []string
}

// HEADRef returns the ref that corresponds to "HEAD", if the remote
// advertised one.
func (r Refs) HEADRef() (Ref, bool) {
	for _, ref := range r.List {
		if ref.Name == plumbing.HEAD {
			return ref, true
		}
	}
	return Ref{}, false
}

// Client is a git smart-HTTP client for a single remote repository URL.
type Client struct {
	// BaseURL is the repository's URL, without a trailing slash, e.g.
	// "https://example.com/user/repo.git".
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client for baseURL using http.DefaultClient.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    http.DefaultClient,
	}
}

// GetRefs performs the ref discovery half of the smart-HTTP protocol:
// GET {base}/info/refs?service=git-upload-pack
func (c *Client) GetRefs() (*Refs, error) {
	url := fmt.Sprintf("%s/info/refs?service=git-upload-pack", c.BaseURL)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.Errorf("could not build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("could not reach %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerrors.Errorf("GET %s returned %d: %w", url, resp.StatusCode, ErrUnexpectedStatus)
	}

	br := bufio.NewReader(resp.Body)

	// The first pkt-line announces the service, e.g. "# service=git-upload-pack\n".
	if _, _, err := ReadPktLine(br); err != nil {
		return nil, xerrors.Errorf("could not read service announcement: %w", err)
	}
	// Followed by a flush packet.
	if _, isFlush, err := ReadPktLine(br); err != nil || !isFlush {
		return nil, xerrors.Errorf("expected flush after service announcement: %w", ErrInvalidPktLine)
	}

	lines, err := ReadPktLines(br)
	if err != nil {
		return nil, xerrors.Errorf("could not read ref advertisement: %w", err)
	}

	refs := &Refs{}
	for i, line := range lines {
		content := line
		if i == 0 {
			// The first ref line carries the capability list after a NUL.
			if idx := bytes.IndexByte(content, 0); idx >= 0 {
				refs.Capabilities = strings.Fields(string(content[idx+1:]))
				content = content[:idx]
			}
		}

		fields := strings.SplitN(string(content), " ", 2)
		if len(fields) != 2 {
			continue
		}
		oid, err := plumbing.NewOidFromStr(fields[0])
		if err != nil {
			return nil, xerrors.Errorf("invalid ref oid %q: %w", fields[0], err)
		}
		refs.List = append(refs.List, Ref{Name: fields[1], Oid: oid})
	}

	return refs, nil
}

// FetchPack performs the negotiation half of the smart-HTTP protocol:
// POST {base}/git-upload-pack with a want list for every oid, no haves
// (ugit only ever does a full clone), and returns a reader positioned at
// the first byte of the PACK stream.
func (c *Client) FetchPack(wants []plumbing.Oid) (io.ReadCloser, error) {
	if len(wants) == 0 {
		return nil, errors.New("no wants to fetch")
	}

	var body bytes.Buffer
	for i, oid := range wants {
		line := fmt.Sprintf("want %s", oid.String())
		if i == 0 {
			line += " " + capabilityLine
		}
		body.Write(EncodePktLine([]byte(line + "\n")))
	}
	body.Write(FlushPkt)
	body.Write(EncodePktLine([]byte("done\n")))

	url := fmt.Sprintf("%s/git-upload-pack", c.BaseURL)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return nil, xerrors.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-git-upload-pack-request")
	req.Header.Set("Accept", "application/x-git-upload-pack-result")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("could not reach %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, xerrors.Errorf("POST %s returned %d: %w", url, resp.StatusCode, ErrUnexpectedStatus)
	}

	br := bufio.NewReader(resp.Body)
	if err := skipToPackMagic(br); err != nil {
		resp.Body.Close()
		return nil, xerrors.Errorf("could not find start of pack data: %w", err)
	}

	return &readCloserWrapper{Reader: br, closer: resp.Body}, nil
}

// capabilityLine lists the capabilities ugit asks for on the first want
// line. Neither side-band nor ofs-delta is requested: without side-band
// the server streams the pack as raw bytes right after its ack/nak lines,
// with no further pkt-line framing to undo; without ofs-delta the server
// is left free to send ref-delta only, which is the only delta encoding
// the pack parser resolves.
const capabilityLine = "agent=ugit/1.0"

// skipToPackMagic consumes ack/nak/shallow pkt-lines from the response
// until the raw "PACK" signature is next on the stream. Those lines are
// framed individually and can vary in count and content depending on what
// the server decided to say, so the only robust stopping condition is
// recognizing the signature itself rather than assuming a fixed byte count.
func skipToPackMagic(br *bufio.Reader) error {
	for {
		peek, err := br.Peek(4)
		if err != nil {
			return xerrors.Errorf("could not peek for pack signature: %w", err)
		}
		if string(peek) == "PACK" {
			return nil
		}
		if _, _, err := ReadPktLine(br); err != nil {
			return xerrors.Errorf("could not read pre-pack line: %w", err)
		}
	}
}

type readCloserWrapper struct {
	io.Reader
	closer io.Closer
}

func (r *readCloserWrapper) Close() error {
	return r.closer.Close()
}
