package runtime

import "github.com/wippyai/script-runtime/engine"

// ExceptionInfo is a read-only snapshot of an engine exception. No
// engine-native value is retained after the capture that produced it.
type ExceptionInfo struct {
	Name    string
	Message string
	Stack   string
}

// String composes the diagnostic form: the message, followed by the stack
// when one is present.
func (i *ExceptionInfo) String() string {
	if i.Stack == "" {
		return i.Message
	}
	return i.Message + "\n" + i.Stack
}

const unknownError = "unknown error"

// CaptureException extracts structured error information from the context's
// pending exception, clearing it as a side effect. Returns nil when no
// exception is pending.
//
// Capture never fails: any internal conversion failure degrades to a
// best-effort "unknown error" snapshot.
func CaptureException(eng engine.Engine, c engine.ContextHandle) *ExceptionInfo {
	if !safeHasException(eng, c) {
		return nil
	}
	v := eng.TakeException(c)

	info := &ExceptionInfo{Message: unknownError}
	if s := safeValueString(eng, c, v); s != "" {
		info.Message = s
	}

	if safeIsError(eng, c, v) {
		if name := safeField(eng, c, v, "name"); name != "" {
			info.Name = name
		}
		if msg := safeField(eng, c, v, "message"); msg != "" {
			info.Message = msg
		}
		info.Stack = safeField(eng, c, v, "stack")
	}

	return info
}

func safeHasException(eng engine.Engine, c engine.ContextHandle) (has bool) {
	defer func() {
		if recover() != nil {
			has = false
		}
	}()
	return eng.HasException(c)
}

func safeValueString(eng engine.Engine, c engine.ContextHandle, v engine.Value) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return eng.ValueString(c, v)
}

func safeIsError(eng engine.Engine, c engine.ContextHandle, v engine.Value) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return eng.IsErrorValue(c, v)
}

func safeField(eng engine.Engine, c engine.ContextHandle, v engine.Value, name string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return eng.ErrorField(c, v, name)
}
