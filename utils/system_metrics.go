package utils

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// GetCPUUsage returns host CPU usage in percent since the previous call.
// It does not block; the first call reports usage since boot.
func GetCPUUsage() float64 {
	percentage, err := cpu.Percent(0, false)
	if err != nil {
		Logger.WithError(err).Debug("reading cpu usage")
		return 0
	}
	if len(percentage) > 0 {
		return percentage[0]
	}
	return 0
}

// GetMemoryUsage returns the share of host memory in use, in percent.
func GetMemoryUsage() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		Logger.WithError(err).Debug("reading memory usage")
		return 0
	}
	return vm.UsedPercent
}
