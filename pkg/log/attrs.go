package log

import (
	"log/slog"

	"github.com/kode4food/dana/pkg/api"
)

func RunID[T ~string](id T) slog.Attr {
	return slog.String("run_id", string(id))
}

func Function(name string) slog.Attr {
	return slog.String("function", name)
}

func Location(loc api.Location) slog.Attr {
	return slog.String("location", loc.String())
}

func Depth(depth int) slog.Attr {
	return slog.Int("depth", depth)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
