package simulation

import (
	"errors"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
)

// WorldActor hosts the Driver. Its mailbox serialises settings patches and
// frame ticks, so a frame never sees a half applied patch.
type WorldActor struct {
	driver   *Driver
	settings *behavior.AtomicSettings

	firstTick    time.Time
	hasFirstTick bool
	stopLogged   bool
}

// NewWorldActor wraps a driver that reads its settings from settings.
func NewWorldActor(driver *Driver, settings *behavior.AtomicSettings) *WorldActor {
	return &WorldActor{driver: driver, settings: settings}
}

// PreStart starts the driver. A renderer that fails to initialise makes the
// spawn fail, which the host treats as fatal.
func (w *WorldActor) PreStart(ctx *actor.Context) error {
	if err := w.driver.Start(); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		return err
	}
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("world started: %d agents", len(w.driver.Population()))

	case *timestamppb.Timestamp:
		w.tick(ctx, msg.AsTime())

	case *structpb.Struct:
		next, err := ApplySettingsPatch(w.settings.Load(), msg)
		if err != nil {
			ctx.Logger().Infof("settings patch ignored: %v", err)
			return
		}
		w.settings.Store(next)

	case *emptypb.Empty:
		st, err := Status{
			State:  w.driver.State().String(),
			Frames: w.driver.Frames(),
			Agents: len(w.driver.Population()),
		}.toStruct()
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(st)

	default:
		ctx.Unhandled()
	}
}

// tick runs one frame. Timestamps are taken relative to the first tick.
func (w *WorldActor) tick(ctx *actor.ReceiveContext, at time.Time) {
	if !w.hasFirstTick {
		w.firstTick, w.hasFirstTick = at, true
	}
	err := w.driver.Frame(at.Sub(w.firstTick))
	switch {
	case err == nil:
	case errors.Is(err, ErrStopped):
		if !w.stopLogged {
			ctx.Logger().Info("world stopped, ignoring ticks")
			w.stopLogged = true
		}
	default:
		ctx.Err(err)
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	w.driver.Stop()
	ctx.ActorSystem().Logger().Infof("world is shutdown after %d frames", w.driver.Frames())
	return nil
}
