package metrics

import (
	"context"
	"sync"
	"time"

	"logstream/internal/stream"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"
)

const samplerInterval = 15 * time.Second

// Sampler periodically publishes host CPU, memory, and disk usage plus
// the current stream depth to the telemetry registry.
type Sampler struct {
	streamClient stream.Client
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewSampler creates a new Sampler instance.
func NewSampler(streamClient stream.Client) *Sampler {
	return &Sampler{
		streamClient: streamClient,
		stopChan:     make(chan struct{}),
	}
}

// Start begins periodic sampling.
func (s *Sampler) Start() {
	s.wg.Add(1)
	go s.runLoop()
}

// Stop halts sampling and waits for the loop to exit.
func (s *Sampler) Stop(ctx context.Context) {
	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Debug("Metrics sampler stopped")
	case <-ctx.Done():
		logrus.Warn("Metrics sampler stop timed out")
	}
}

func (s *Sampler) runLoop() {
	defer s.wg.Done()

	// Initial sample on start so gauges are populated before the first tick
	s.sample()

	ticker := time.NewTicker(samplerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sample()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Sampler) sample() {
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		SystemCPUPercent.Set(percentages[0])
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		SystemMemoryUsedBytes.Set(float64(vm.Used))
		SystemMemoryAvailableBytes.Set(float64(vm.Available))
		SystemMemoryTotalBytes.Set(float64(vm.Total))
	}

	if usage, err := disk.Usage("/"); err == nil {
		SystemDiskUsedBytes.Set(float64(usage.Used))
		SystemDiskFreeBytes.Set(float64(usage.Free))
		SystemDiskTotalBytes.Set(float64(usage.Total))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if length, err := s.streamClient.Len(ctx); err == nil {
		StreamSize.Set(float64(length))
	} else {
		logrus.WithError(err).Debug("Failed to sample stream length")
	}
}
