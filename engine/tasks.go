package engine

// Wait is a task's resume condition.
type Wait struct {
	kind    waitKind
	seconds float64
	frames  int
}

type waitKind uint8

const (
	waitDone waitKind = iota
	waitSeconds
	waitFrame
)

// WaitSeconds suspends the task until the given simulation time has
// elapsed.
func WaitSeconds(s float64) Wait {
	return Wait{kind: waitSeconds, seconds: s}
}

// NextFrame suspends the task for exactly one variable frame.
func NextFrame() Wait {
	return Wait{kind: waitFrame, frames: 1}
}

// Done terminates the task.
func Done() Wait {
	return Wait{kind: waitDone}
}

// Task is a resumable unit of deferred work. Each call runs one stage
// and returns the condition under which the task resumes; state between
// stages lives in the closure. Return Done to finish.
type Task func() Wait

type scheduledTask struct {
	run  Task
	wait Wait
}

// Tasks is a cooperative scheduler for a context's deferred work. It is
// advanced once per variable frame, after the context's direct update,
// and resumes ready tasks in the order they were scheduled. Scheduling
// never preempts: everything runs on the frame-loop goroutine.
//
// Tasks belong to their context. When the context is not active the
// scheduler is simply not advanced, so pending work freezes rather than
// running against an inactive context, and resumes if the context
// becomes active again.
type Tasks struct {
	queue []*scheduledTask
}

// Schedule appends a task to the queue. Its first stage runs on the
// next scheduler advance.
func (t *Tasks) Schedule(task Task) {
	t.queue = append(t.queue, &scheduledTask{run: task, wait: NextFrame()})
}

// Pending returns the number of tasks not yet finished.
func (t *Tasks) Pending() int {
	return len(t.queue)
}

// Advance ages every wait condition by dt and resumes the tasks that
// became ready, FIFO. Tasks scheduled during Advance first run on the
// following frame.
func (t *Tasks) Advance(dt float64) {
	n := len(t.queue)
	kept := t.queue[:0]

	for i := 0; i < n; i++ {
		st := t.queue[i]
		if !st.age(dt) {
			kept = append(kept, st)
			continue
		}

		st.wait = st.run()
		if st.wait.kind != waitDone {
			kept = append(kept, st)
		}
	}

	// Keep tasks scheduled while resuming.
	kept = append(kept, t.queue[n:]...)
	t.queue = kept
}

// age advances the wait by one frame of dt seconds and reports whether
// the task is ready to resume.
func (st *scheduledTask) age(dt float64) bool {
	switch st.wait.kind {
	case waitSeconds:
		st.wait.seconds -= dt
		return st.wait.seconds <= 0
	case waitFrame:
		st.wait.frames--
		return st.wait.frames <= 0
	default:
		return true
	}
}
