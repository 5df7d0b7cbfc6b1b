package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelmin/ugit/internal/readutil"
	"github.com/kelmin/ugit/plumbing"
	"golang.org/x/xerrors"
)

// ErrSignatureInvalid is returned when an author/committer line can't be
// parsed.
var ErrSignatureInvalid = errors.New("commit signature is invalid")

// Signature represents the author or committer of a commit: a name, an
// email, and the instant the commit was made (with its original timezone).
type Signature struct {
	Name  string
	Email string
	Time  time.Time
}

// String renders the signature the way git stores it:
// "Name <email> unix-seconds -0700".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// IsZero reports whether the signature has its zero value.
func (s Signature) IsZero() bool {
	return s.Time.IsZero() && s.Name == "" && s.Email == ""
}

// NewSignature builds a signature at the current time.
func NewSignature(name, email string) Signature {
	return Signature{Name: name, Email: email, Time: time.Now()}
}

// NewSignatureFromBytes parses a signature line of the form:
//
//	User Name <user.email@domain.tld> timestamp timezone
func NewSignatureFromBytes(b []byte) (Signature, error) {
	sig := Signature{}

	data := readutil.ReadTo(b, '<')
	if len(data) == 0 {
		return sig, xerrors.Errorf("couldn't retrieve the name: %w", ErrSignatureInvalid)
	}
	sig.Name = strings.TrimSpace(string(data))
	offset := len(data) + 1 // +1 to skip "<"
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature stopped after the name: %w", ErrSignatureInvalid)
	}

	data = readutil.ReadTo(b[offset:], '>')
	if len(data) == 0 {
		return sig, xerrors.Errorf("couldn't retrieve the email: %w", ErrSignatureInvalid)
	}
	sig.Email = string(data)
	offset += len(data) + 2 // +2 to skip "> "
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature stopped after the email: %w", ErrSignatureInvalid)
	}

	timestamp := readutil.ReadTo(b[offset:], ' ')
	if timestamp == nil {
		return sig, xerrors.Errorf("couldn't retrieve the timestamp: %w", ErrSignatureInvalid)
	}
	offset += len(timestamp) + 1 // +1 to skip " "
	if offset >= len(b) {
		return sig, xerrors.Errorf("signature stopped after the timestamp: %w", ErrSignatureInvalid)
	}

	t, err := strconv.ParseInt(string(timestamp), 10, 64)
	if err != nil {
		return sig, xerrors.Errorf("invalid timestamp %s: %w", timestamp, err)
	}
	sig.Time = time.Unix(t, 0)

	timezone := b[offset:]
	tz, err := time.Parse("-0700", string(timezone))
	if err != nil {
		return sig, xerrors.Errorf("invalid timezone format %s: %w", timezone, err)
	}
	sig.Time = sig.Time.In(tz.Location())
	return sig, nil
}

// CommitOptions carries the optional fields used to build a new commit.
type CommitOptions struct {
	ParentsID []plumbing.Oid
	Message   string
	GPGSig    string
	// Committer is the person recording the commit. If zero, the author
	// is used as committer too.
	Committer Signature
}

// Commit represents a commit object.
type Commit struct {
	rawObject *Object

	author    Signature
	committer Signature

	gpgSig  string
	message string

	parentIDs []plumbing.Oid
	id        plumbing.Oid
	treeID    plumbing.Oid
}

// NewCommit builds a commit pointing at treeID, written by author, with the
// given options.
func NewCommit(treeID plumbing.Oid, author Signature, opts *CommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
		parentIDs: opts.ParentsID,
		gpgSig:    opts.GPGSig,
	}

	if c.committer.IsZero() {
		c.committer = author
	}

	return c
}

// ID returns the Oid of the commit object. It is set only for a commit
// decoded from an existing object; ToObject does not set it.
func (c *Commit) ID() plumbing.Oid {
	return c.id
}

// Author returns the signature of whoever made the change.
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the signature of whoever recorded the commit.
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit message.
func (c *Commit) Message() string {
	return c.message
}

// ParentIDs returns the commit's parents, in order. The root commit of an
// orphan branch has none; a merge has two or more.
func (c *Commit) ParentIDs() []plumbing.Oid {
	out := make([]plumbing.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// TreeID returns the Oid of the commit's root tree.
func (c *Commit) TreeID() plumbing.Oid {
	return c.treeID
}

// GPGSig returns the commit's detached GPG signature, if any.
func (c *Commit) GPGSig() string {
	return c.gpgSig
}

// ToObject returns the Object encoding of the commit.
func (c *Commit) ToObject() (*Object, error) {
	if c.rawObject != nil {
		return c.rawObject, nil
	}

	buf := new(bytes.Buffer)
	buf.WriteString("tree ")
	buf.WriteString(c.treeID.String())
	buf.WriteRune('\n')

	for _, p := range c.parentIDs {
		buf.WriteString("parent ")
		buf.WriteString(p.String())
		buf.WriteRune('\n')
	}

	buf.WriteString("author ")
	buf.WriteString(c.Author().String())
	buf.WriteRune('\n')

	buf.WriteString("committer ")
	buf.WriteString(c.Committer().String())
	buf.WriteRune('\n')

	if c.gpgSig != "" {
		buf.WriteString("gpgsig ")
		buf.WriteString(c.gpgSig)
		if !strings.HasSuffix(c.gpgSig, "\n") {
			buf.WriteRune('\n')
		}
	}

	buf.WriteRune('\n')
	buf.WriteString(c.message)

	if c.id != plumbing.NullOid {
		return NewWithID(c.id, TypeCommit, buf.Bytes()), nil
	}
	return New(TypeCommit, buf.Bytes()), nil
}
