package main

import (
	ugit "github.com/kelmin/ugit"
)

// loadRepository opens the repository containing cfg.C.
func loadRepository(cfg *globalFlags) (*ugit.Repository, error) {
	root, err := repoRoot(cfg)
	if err != nil {
		return nil, err
	}
	return ugit.OpenRepository(root)
}
