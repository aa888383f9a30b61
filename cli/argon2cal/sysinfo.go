package main

import (
	"fmt"

	"github.com/alecthomas/units"
	"github.com/spf13/cobra"

	"github.com/kuking/argon2cal/sysinfo"
)

func NewSysinfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sysinfo",
		Short:   "Show the processor, memory and the suggested parallelism",
		GroupID: gCalibration,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := sysinfo.Detect()
			m, err := sysinfo.DetectMemory()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "          Processor: %v\n", p.Brand)
			fmt.Fprintf(w, "     Physical Cores: %v\n", p.PhysicalCores)
			fmt.Fprintf(w, "      Logical Cores: %v\n", p.LogicalCores)
			fmt.Fprintf(w, "  Available Threads: %v\n", p.Threads)
			fmt.Fprintf(w, "       Total Memory: %v\n", units.Base2Bytes(int64(m.Total)))
			fmt.Fprintf(w, "   Available Memory: %v\n", units.Base2Bytes(int64(m.Available)))
			fmt.Fprintf(w, "Default Parallelism: %v\n", sysinfo.DefaultParallelism())
			fmt.Fprintf(w, "       Memory Guard: %v\n", units.Base2Bytes(int64(sysinfo.MemoryGuardFor(m.Available))*1024))
			return nil
		},
	}
}
