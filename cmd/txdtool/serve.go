package main

import (
	"github.com/imgfactory/txdtools/pkg/web"
)

func runServe(args []string) error {
	fs, configPath := newFlagSet("serve")
	addr := fs.String("addr", "localhost:8000", "Listen address")
	e, err := setup(fs, configPath, args, 1)
	if err != nil {
		return err
	}

	s := web.NewServer(fs.Arg(0),
		web.WithTXDOptions(e.opts...),
		web.WithBackup(e.cfg.Backup),
		web.WithLogger(e.logger),
	)
	return s.ListenAndServe(*addr)
}
