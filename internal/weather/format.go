package weather

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCity is the display name used in the report header.
const DefaultCity = "贵阳市"

// Placeholder lines rendered in the composite report when a section is missing.
const (
	warningFailedLine  = "获取天气预警数据失败，失败原因：403, None\n\n"
	forecastFailedLine = "获取天气数据失败，失败原因：403, None\n\n"
	realtimeFailedLine = "获取实时天气数据失败，失败原因：400, None\n"
)

// ErrorKindSystem is the error type shown in system alerts.
const ErrorKindSystem = "系统错误"

// FormatMessage renders r as display text. With a mode set and its data
// present, only that section is rendered. Otherwise every section is
// rendered in the fixed order rain, warning, forecast, life, realtime.
func FormatMessage(city string, r Report, mode Mode) string {
	if city == "" {
		city = DefaultCity
	}

	var b strings.Builder
	b.WriteString(city + "天气信息\n\n")

	switch {
	case mode == ModeRain && r.Rain != nil:
		writeRain(&b, r.Rain)
		return b.String()
	case mode == ModeNow && r.Realtime != nil:
		writeRealtime(&b, r.Realtime)
		return b.String()
	case mode == ModeForecast && r.Forecast != nil && len(r.Forecast.Daily) > 0:
		writeForecast(&b, r.Forecast)
		return b.String()
	case mode == ModeLife && r.Life != nil && len(r.Life.Daily) > 0:
		writeLife(&b, r.Life)
		return b.String()
	}

	if r.Rain != nil {
		writeRain(&b, r.Rain)
		b.WriteString("\n")
	}

	switch {
	case r.Warnings == nil:
		b.WriteString(warningFailedLine)
	case len(r.Warnings.Warnings) > 0:
		b.WriteString("⚠️ 天气预警:\n")
		for _, w := range r.Warnings.Warnings {
			fmt.Fprintf(&b, "%s: %s\n", w.TypeName, w.Text)
		}
		b.WriteString("\n")
	}

	if r.Forecast == nil || len(r.Forecast.Daily) == 0 {
		b.WriteString(forecastFailedLine)
	} else {
		writeForecast(&b, r.Forecast)
	}

	if r.Life != nil && len(r.Life.Daily) > 0 {
		writeLife(&b, r.Life)
		b.WriteString("\n")
	}

	if r.Realtime == nil {
		b.WriteString(realtimeFailedLine)
	} else {
		writeRealtime(&b, r.Realtime)
	}

	return b.String()
}

// FormatError renders the system alert sent when a run fails.
func FormatError(kind, msg string) string {
	return fmt.Sprintf("⚠️ 系统错误提醒\n\n错误类型: %s\n错误信息: %s", kind, msg)
}

func writeRain(b *strings.Builder, rain *MinutelyRain) {
	b.WriteString("分钟级降水预报:\n")
	b.WriteString(rain.Summary + "\n")
	for _, m := range rain.Minutely {
		fmt.Fprintf(b, "%s: %smm\n", clockTime(m.FxTime), m.Precip)
	}
}

func writeRealtime(b *strings.Builder, now *Realtime) {
	b.WriteString("实时天气:\n")
	fmt.Fprintf(b, "温度: %s°C\n", now.Temp)
	fmt.Fprintf(b, "体感温度: %s°C\n", now.FeelsLike)
	fmt.Fprintf(b, "相对湿度: %s%%\n", now.Humidity)
	fmt.Fprintf(b, "天气状况: %s\n", now.Text)
}

// writeForecast ends every day with a blank line, so the section needs no
// separator of its own in the composite report.
func writeForecast(b *strings.Builder, f *Forecast) {
	b.WriteString("三日天气预报:\n")
	for _, d := range f.Daily {
		fmt.Fprintf(b, "【%s】\n", dateLabel(d.FxDate))
		fmt.Fprintf(b, "天气: %s\n", d.TextDay)
		fmt.Fprintf(b, "温度: %s°C ~ %s°C\n", d.TempMin, d.TempMax)
		fmt.Fprintf(b, "湿度: %s%%\n", d.Humidity)
		fmt.Fprintf(b, "降水概率: %s%%\n", d.Precip)
		fmt.Fprintf(b, "风向: %s %s级\n", d.WindDirDay, d.WindScaleDay)
		b.WriteString("\n")
	}
}

func writeLife(b *strings.Builder, l *LifeIndices) {
	b.WriteString("生活指数:\n")
	for _, idx := range l.Daily {
		fmt.Fprintf(b, "%s: %s - %s\n", idx.Name, idx.Category, idx.Text)
	}
}

// clockTime extracts "HH:MM" from an ISO time such as 2024-01-01T12:00+08:00.
func clockTime(fxTime string) string {
	_, after, found := strings.Cut(fxTime, "T")
	if !found {
		return fxTime
	}
	if len(after) > 5 {
		return after[:5]
	}
	return after
}

// dateLabel turns 2024-01-02 into 01月02日. Unparseable dates are shown as-is.
func dateLabel(fxDate string) string {
	d, err := time.Parse("2006-01-02", fxDate)
	if err != nil {
		return fxDate
	}
	return d.Format("01月02日")
}
