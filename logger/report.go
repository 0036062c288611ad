package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net" //cloudwatch

	"github.com/aws/aws-sdk-go-v2/aws"                              //cloudwatch
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types" //cloudwatch
)

type channelStat struct {
	messages int64
	bytes    int64
}

var (
	errorsVenue    int64
	errorsServer   int64
	warnsVenue     int64
	warnsServer    int64
	venueFetches   int64
	requestsServed int64
	channels       sync.Map // map[string]*channelStat
)

func recordWarn(component string) {
	if strings.Contains(component, "venue") || strings.Contains(component, "paginate") {
		atomic.AddInt64(&warnsVenue, 1)
	} else if strings.Contains(component, "server") || strings.Contains(component, "service") {
		atomic.AddInt64(&warnsServer, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "venue") || strings.Contains(component, "paginate") {
		atomic.AddInt64(&errorsVenue, 1)
	} else if strings.Contains(component, "server") || strings.Contains(component, "service") {
		atomic.AddInt64(&errorsServer, 1)
	}
}

// IncrementVenueFetch records one upstream request of approximately size
// bytes against the named endpoint class.
func IncrementVenueFetch(endpoint string, size int) {
	atomic.AddInt64(&venueFetches, 1)
	recordChannel(endpoint, size)
}

// IncrementRequestServed records one API response of approximately size
// bytes.
func IncrementRequestServed(size int) {
	atomic.AddInt64(&requestsServed, 1)
	recordChannel("api_responses", size)
}

func RecordChannelMessage(name string, size int) {
	recordChannel(name, size)
}

func recordChannel(name string, size int) {
	v, _ := channels.LoadOrStore(name, &channelStat{})
	cs := v.(*channelStat)
	atomic.AddInt64(&cs.messages, 1)
	atomic.AddInt64(&cs.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and traffic statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)
	channelData := map[string]map[string]int64{}
	channels.Range(func(k, v any) bool {
		name := k.(string)
		cs := v.(*channelStat)
		channelData[name] = map[string]int64{
			"messages": atomic.LoadInt64(&cs.messages),
			"bytes":    atomic.LoadInt64(&cs.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_venue":    atomic.LoadInt64(&errorsVenue),
		"errors_server":   atomic.LoadInt64(&errorsServer),
		"warns_venue":     atomic.LoadInt64(&warnsVenue),
		"warns_server":    atomic.LoadInt64(&warnsServer),
		"venue_fetches":   atomic.LoadInt64(&venueFetches),
		"requests_served": atomic.LoadInt64(&requestsServed),
		"goroutines":      runtime.NumGoroutine(),
		"cpu_percent":     cpuPct,
		"memory_mb":       int64(memStats.Used) / 1024 / 1024,
		"disk_mb":         int64(diskStats.Used) / 1024 / 1024,
		"channels":        channelData,
		"net_bytes_sent":  int64(bytesSent),
		"net_bytes_recv":  int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-ErrorsVenue"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_venue"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-ErrorsServer"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_server"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-WarnsVenue"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_venue"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-WarnsServer"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_server"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-VenueFetches"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["venue_fetches"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-RequestsServed"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["requests_served"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("PerpDash-NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range channelData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("PerpDash-ChannelMessages"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Channel"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["messages"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("PerpDash-ChannelBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Channel"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
