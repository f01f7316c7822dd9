package indexer

import (
	"io"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
