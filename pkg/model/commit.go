package model

import (
	"fmt"
	"time"
)

// Signature records who did something and when
type Signature struct {
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	_         struct{}
}

func (s Signature) String() string {
	if s.Email == "" {
		return s.Name
	}
	if s.Name == "" {
		return s.Email
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// CommitDescriptor is the persisted form of a commit.
//
// Commits are immutable: any change produces a new descriptor, hence a new commit id.
type CommitDescriptor struct {
	Parents      []CommitID `json:"parents,omitempty" yaml:"parents,omitempty"`
	Predecessors []CommitID `json:"predecessors,omitempty" yaml:"predecessors,omitempty"`
	RootTree     TreeID     `json:"rootTree" yaml:"rootTree"`
	ChangeID     ChangeID   `json:"changeID" yaml:"changeID"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Author       Signature  `json:"author" yaml:"author"`
	Committer    Signature  `json:"committer" yaml:"committer"`
	IsOpen       bool       `json:"open,omitempty" yaml:"open,omitempty"`
	IsPruned     bool       `json:"pruned,omitempty" yaml:"pruned,omitempty"`
	_            struct{}
}

// Clone performs a deep copy of the descriptor
func (d CommitDescriptor) Clone() CommitDescriptor {
	c := d
	c.Parents = append([]CommitID(nil), d.Parents...)
	c.Predecessors = append([]CommitID(nil), d.Predecessors...)
	return c
}
