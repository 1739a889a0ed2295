package ensemble

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Snapshots: CBOR export and import of ensemble trees
// ---------------------------------------------------------------------------

// SnapshotVersion identifies the snapshot document layout.
const SnapshotVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ensemble: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// SnapshotDoc is the serialized form of one ensemble tree.
type SnapshotDoc struct {
	ID      string       `cbor:"id"`
	Version int          `cbor:"version"`
	Root    EnsembleSnap `cbor:"root"`
}

// EnsembleSnap captures one ensemble's name and parts, in store order.
type EnsembleSnap struct {
	Name  string     `cbor:"name"`
	Parts []PartSnap `cbor:"parts"`
}

// PartSnap captures one part. Scripted parts carry their argument spec
// and body and can be restored; native parts are recorded by name only,
// since their Go handlers cannot be serialized.
type PartSnap struct {
	Name     string        `cbor:"name"`
	Usage    string        `cbor:"usage,omitempty"`
	MinChars int           `cbor:"minchars"`
	Scripted bool          `cbor:"scripted,omitempty"`
	ArgSpec  string        `cbor:"argspec,omitempty"`
	Body     string        `cbor:"body,omitempty"`
	Child    *EnsembleSnap `cbor:"child,omitempty"`
}

// Snapshot serializes the ensemble tree rooted at the given path into
// a canonical CBOR document tagged with a fresh id.
func (r *Registry) Snapshot(ensPath string) ([]byte, error) {
	ens, err := r.FindEnsemblePath(ensPath)
	if err != nil {
		return nil, err
	}
	doc := SnapshotDoc{
		ID:      uuid.NewString(),
		Version: SnapshotVersion,
		Root:    snapEnsemble(ens),
	}
	return cborEncMode.Marshal(&doc)
}

func snapEnsemble(ens *Ensemble) EnsembleSnap {
	snap := EnsembleSnap{Name: ens.cmd.ShortName()}
	for i := 0; i < ens.parts.Len(); i++ {
		p := ens.parts.At(i)
		ps := PartSnap{
			Name:     p.Name,
			Usage:    p.Usage,
			MinChars: p.MinChars,
			Scripted: p.flags&PartScripted != 0,
		}
		if p.proc != nil {
			ps.ArgSpec = p.proc.ArgSpec
			ps.Body = p.proc.Body
		}
		if p.child != nil {
			child := snapEnsemble(p.child)
			ps.Child = &child
		}
		snap.Parts = append(snap.Parts, ps)
	}
	return snap
}

// RestoreSnapshot deserializes a snapshot document and recreates its
// ensemble tree in this registry. Scripted parts are rebuilt from their
// stored specs; native parts are skipped (their handlers must be
// re-registered by the embedder).
func (r *Registry) RestoreSnapshot(data []byte) error {
	var doc SnapshotDoc
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("ensemble: unmarshal snapshot: %w", err)
	}
	if doc.Version != SnapshotVersion {
		return fmt.Errorf("ensemble: unsupported snapshot version %d", doc.Version)
	}
	ens, err := r.createEnsemble(nil, doc.Root.Name)
	if err != nil {
		return err
	}
	return r.restoreParts(ens, &doc.Root)
}

func (r *Registry) restoreParts(ens *Ensemble, snap *EnsembleSnap) error {
	for _, ps := range snap.Parts {
		if ps.Child != nil {
			child, err := r.createEnsemble(ens, ps.Name)
			if err != nil {
				return err
			}
			if err := r.restoreParts(child, ps.Child); err != nil {
				return err
			}
			continue
		}
		if !ps.Scripted {
			continue
		}
		if _, err := r.AddScriptPart(ens, ps.Name, ps.ArgSpec, ps.Body); err != nil {
			return err
		}
	}
	return nil
}
