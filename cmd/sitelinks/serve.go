package main

import (
	sitelinkshttp "github.com/fwojciec/sitelinks/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	srv := sitelinkshttp.NewServer(deps.Discoverer, deps.Logger)
	return srv.ListenAndServe(deps.Ctx, c.Addr)
}
