package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/process"
)

// Process exposes the hub's own memory and cpu usage.
// Samples that cannot be read are reported as zero and logged.
func (m *Metrics) Process(log *slog.Logger) error {
	if m == nil {
		return nil
	}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "chat_process_resident_bytes",
			Help: "Resident memory of the hub process.",
		}, func() float64 {
			mem, err := p.MemoryInfo()
			if err != nil {
				log.Warn("Failed to read process memory", "error", err)
				return 0
			}
			return float64(mem.RSS)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "chat_process_cpu_percent",
			Help: "Cpu usage of the hub process since it started.",
		}, func() float64 {
			cpu, err := p.CPUPercent()
			if err != nil {
				log.Warn("Failed to read process cpu", "error", err)
				return 0
			}
			return cpu
		}),
	)
	return nil
}
